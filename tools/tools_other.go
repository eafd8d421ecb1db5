//go:build !linux

package tools

import "time"

// Sleep blocks for at least d.
func Sleep(d time.Duration) {
	time.Sleep(d)
}
