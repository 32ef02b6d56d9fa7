//go:build windows

package introspect

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/windows"
)

// HostOS describes the running system.
func HostOS() OSInfo {
	v := windows.RtlGetVersion()
	return OSInfo{
		GOOS:    runtime.GOOS,
		Name:    OSName(runtime.GOOS),
		Release: fmt.Sprintf("%d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber),
	}
}
