package SX127X

import (
	"time"
)

// CompletionSource waits for the chip to raise its completion line (DIO0).
//
// WaitForCompletion returns true as soon as the line is seen high and false
// only once timeout has elapsed.
type CompletionSource interface {
	WaitForCompletion(timeout time.Duration) bool
}

// DefaultPollInterval is the polling period of PolledCompletion.
const DefaultPollInterval = time.Millisecond

// PolledCompletion samples Check until it reports true.
//
// DIO0 stays high until the IRQ flags are cleared, so sampling cannot lose
// a completion that happens during the wait.
type PolledCompletion struct {
	Check    func() bool
	Interval time.Duration
}

func (p *PolledCompletion) WaitForCompletion(timeout time.Duration) bool {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(timeout)
	for {
		if p.Check() {
			return true
		}
		left := time.Until(deadline)
		if left <= 0 {
			return false
		}
		if left < interval {
			time.Sleep(left)
		} else {
			time.Sleep(interval)
		}
	}
}

// EdgeCompletion is fed by a rising edge callback and hands the event to the
// waiting caller through a single slot. Notify is safe to call from any
// goroutine and never blocks; it does not touch the register bus.
type EdgeCompletion struct {
	level  func() bool
	signal chan struct{}
}

// NewEdgeCompletion returns an EdgeCompletion. level reads the current line
// level and catches a line that went high before the wait started.
func NewEdgeCompletion(level func() bool) *EdgeCompletion {
	return &EdgeCompletion{
		level:  level,
		signal: make(chan struct{}, 1),
	}
}

// Notify records an edge.
func (e *EdgeCompletion) Notify() {
	select {
	case e.signal <- struct{}{}:
	default:
	}
}

func (e *EdgeCompletion) WaitForCompletion(timeout time.Duration) bool {
	// edges from before the call are stale
	select {
	case <-e.signal:
	default:
	}
	if e.level() {
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-e.signal:
		return true
	case <-timer.C:
		return false
	}
}
