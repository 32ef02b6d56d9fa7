//go:build !windows

package introspect

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// HostOS describes the running system.
func HostOS() OSInfo {
	info := OSInfo{GOOS: runtime.GOOS, Name: OSName(runtime.GOOS)}
	var u unix.Utsname
	if err := unix.Uname(&u); err == nil {
		info.Release = unix.ByteSliceToString(u.Release[:])
	}
	return info
}
