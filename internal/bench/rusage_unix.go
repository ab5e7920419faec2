//go:build linux || darwin || freebsd || netbsd || openbsd

package bench

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// peakRSS returns the high-water resident set size of the process in bytes.
func peakRSS() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	// darwin reports bytes, the others kilobytes
	if runtime.GOOS == "darwin" {
		return int64(ru.Maxrss)
	}
	return int64(ru.Maxrss) * 1024
}
