//go:build linux

package tools

import (
	"time"

	"golang.org/x/sys/unix"
)

// Sleep blocks for at least d, resuming after signal interruptions.
func Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	t := unix.NsecToTimespec(d.Nanoseconds())
	for {
		var rem unix.Timespec
		err := unix.Nanosleep(&t, &rem)
		if err != unix.EINTR {
			return
		}
		t = rem
	}
}
