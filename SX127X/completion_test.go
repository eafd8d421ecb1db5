package SX127X

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolledCompletionImmediate(t *testing.T) {
	p := &PolledCompletion{Check: func() bool { return true }}
	start := time.Now()
	assert.True(t, p.WaitForCompletion(time.Second))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestPolledCompletionTimeout(t *testing.T) {
	var calls int32
	p := &PolledCompletion{Check: func() bool {
		atomic.AddInt32(&calls, 1)
		return false
	}}
	start := time.Now()
	assert.False(t, p.WaitForCompletion(30*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Greater(t, atomic.LoadInt32(&calls), int32(2))
}

func TestPolledCompletionLateHigh(t *testing.T) {
	var high int32
	p := &PolledCompletion{Check: func() bool { return atomic.LoadInt32(&high) == 1 }}
	time.AfterFunc(20*time.Millisecond, func() { atomic.StoreInt32(&high, 1) })
	start := time.Now()
	assert.True(t, p.WaitForCompletion(2*time.Second))
	assert.Less(t, time.Since(start), time.Second)
}

func TestEdgeCompletionSignal(t *testing.T) {
	e := NewEdgeCompletion(func() bool { return false })
	time.AfterFunc(20*time.Millisecond, e.Notify)
	start := time.Now()
	assert.True(t, e.WaitForCompletion(2*time.Second))
	assert.Less(t, time.Since(start), time.Second)
}

func TestEdgeCompletionDropsStaleEdge(t *testing.T) {
	e := NewEdgeCompletion(func() bool { return false })
	e.Notify()
	e.Notify() // single slot, must not block
	assert.False(t, e.WaitForCompletion(30*time.Millisecond))
}

func TestEdgeCompletionLevelAlreadyHigh(t *testing.T) {
	e := NewEdgeCompletion(func() bool { return true })
	assert.True(t, e.WaitForCompletion(time.Millisecond))
}
