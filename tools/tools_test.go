package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleep(t *testing.T) {
	start := time.Now()
	Sleep(20 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSleepZero(t *testing.T) {
	start := time.Now()
	Sleep(0)
	Sleep(-time.Second)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}
