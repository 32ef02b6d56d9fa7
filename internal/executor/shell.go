package executor

import "os"

// Shell is the interpreter a command string is handed to.
type Shell struct {
	Path string
	Args []string // placed before the command string
}

// Argv returns the full argument vector for command.
func (s Shell) Argv(command string) []string {
	argv := make([]string, 0, len(s.Args)+2)
	argv = append(argv, s.Path)
	argv = append(argv, s.Args...)
	return append(argv, command)
}

// DetectShell picks the interpreter for goos. Windows runs through cmd so
// built-ins like `start` work. Elsewhere a login shell is used so the user's
// PATH and aliases resolve, preferring bash and falling back to sh.
func DetectShell(goos string, exists func(path string) bool) Shell {
	if goos == "windows" {
		return Shell{Path: "cmd", Args: []string{"/c"}}
	}
	if exists == nil {
		exists = fileExists
	}
	if exists("/bin/bash") {
		return Shell{Path: "/bin/bash", Args: []string{"-lc"}}
	}
	return Shell{Path: "/bin/sh", Args: []string{"-lc"}}
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
