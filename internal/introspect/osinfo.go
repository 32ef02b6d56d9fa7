package introspect

// OSInfo names the host operating system.
type OSInfo struct {
	GOOS    string
	Name    string // Windows, Darwin or Linux
	Release string // kernel or build release, may be empty
}

func (o OSInfo) String() string {
	if o.Release == "" {
		return o.Name
	}
	return o.Name + " " + o.Release
}

// OSName maps a GOOS value to the conventional system name.
func OSName(goos string) string {
	switch goos {
	case "windows":
		return "Windows"
	case "darwin":
		return "Darwin"
	case "linux":
		return "Linux"
	case "":
		return "Unknown"
	default:
		return goos
	}
}
