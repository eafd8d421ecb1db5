package SX127X

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/Waziup/single_chan_radio/tools"
)

// LineMode is the state of the auxiliary mode-select lines.
type LineMode int

const (
	LineIdle LineMode = iota
	LineSleep
	LineTx
	LineRx
)

var lineModeStr = []string{"idle", "sleep", "tx", "rx"}

func (m LineMode) String() string {
	if m < 0 || int(m) >= len(lineModeStr) {
		return fmt.Sprintf("LineMode(%d)", int(m))
	}
	return lineModeStr[m]
}

// Lines is the set of GPIO lines wired to the chip.
type Lines interface {
	// PulseReset drives reset low then high, holding each level ResetHold.
	PulseReset() error
	// SetMode drives the mode-select lines. It complements, and never
	// replaces, the OpMode register write.
	SetMode(m LineMode) error
	WaitForCompletion(timeout time.Duration) bool
	// ReadLevel returns the completion line level.
	ReadLevel() bool
	// Close releases all claimed lines.
	Close() error
}

// ResetHold is how long each level of the reset pulse is held.
const ResetHold = 100 * time.Millisecond

// edgeWait bounds a single edge wait of the watcher so it notices Close.
const edgeWait = 100 * time.Millisecond

// Pins names the GPIO pins wired to the chip. TxEn and RxEn drive an antenna
// switch and may be nil on modules without one.
type Pins struct {
	Reset gpio.PinOut
	DIO0  gpio.PinIn
	TxEn  gpio.PinOut
	RxEn  gpio.PinOut

	// EdgeIRQ waits for DIO0 with edge detection instead of polling.
	EdgeIRQ bool
}

// PinLines implements Lines on periph.io pins.
type PinLines struct {
	reset gpio.PinOut
	dio0  gpio.PinIn
	txEn  gpio.PinOut
	rxEn  gpio.PinOut

	completion CompletionSource

	stop      chan struct{}
	watchDone chan struct{}
	closed    bool
}

// NewPinLines claims the pins. If a claim fails, the pins claimed so far are
// released before returning.
func NewPinLines(p Pins) (*PinLines, error) {
	if p.Reset == nil || p.DIO0 == nil {
		return nil, fmt.Errorf("sx127x: reset and dio0 pins are required")
	}
	l := &PinLines{
		reset: p.Reset,
		dio0:  p.DIO0,
		txEn:  p.TxEn,
		rxEn:  p.RxEn,
	}

	var claimed []halter
	fail := func(name string, err error) (*PinLines, error) {
		for _, h := range claimed {
			h.Halt()
		}
		return nil, fmt.Errorf("sx127x: can not claim %s pin: %v", name, err)
	}

	if err := l.reset.Out(gpio.High); err != nil {
		return fail("reset", err)
	}
	claimed = append(claimed, l.reset)

	edge := gpio.NoEdge
	if p.EdgeIRQ {
		edge = gpio.RisingEdge
	}
	if err := l.dio0.In(gpio.PullDown, edge); err != nil {
		return fail("dio0", err)
	}
	claimed = append(claimed, l.dio0)

	if l.txEn != nil {
		if err := l.txEn.Out(gpio.Low); err != nil {
			return fail("txen", err)
		}
		claimed = append(claimed, l.txEn)
	}
	if l.rxEn != nil {
		if err := l.rxEn.Out(gpio.Low); err != nil {
			return fail("rxen", err)
		}
	}

	if p.EdgeIRQ {
		ec := NewEdgeCompletion(l.ReadLevel)
		l.completion = ec
		l.stop = make(chan struct{})
		l.watchDone = make(chan struct{})
		go l.watch(ec.Notify)
	} else {
		l.completion = &PolledCompletion{Check: l.ReadLevel}
	}
	return l, nil
}

type halter interface {
	Halt() error
}

// watch forwards DIO0 edges. It only signals; register access stays with the
// goroutine that owns the radio.
func (l *PinLines) watch(notify func()) {
	defer close(l.watchDone)
	for {
		select {
		case <-l.stop:
			return
		default:
		}
		if l.dio0.WaitForEdge(edgeWait) {
			notify()
		}
	}
}

func (l *PinLines) PulseReset() error {
	if err := l.reset.Out(gpio.Low); err != nil {
		return fmt.Errorf("sx127x: reset low: %v", err)
	}
	tools.Sleep(ResetHold)
	if err := l.reset.Out(gpio.High); err != nil {
		return fmt.Errorf("sx127x: reset high: %v", err)
	}
	tools.Sleep(ResetHold)
	return nil
}

func (l *PinLines) SetMode(m LineMode) error {
	tx, rx := gpio.Low, gpio.Low
	switch m {
	case LineTx:
		tx = gpio.High
	case LineRx:
		rx = gpio.High
	case LineIdle, LineSleep:
	default:
		return fmt.Errorf("sx127x: unknown line mode %d", int(m))
	}
	// drop the active side first so both switch paths are never on together
	if tx == gpio.Low && l.txEn != nil {
		if err := l.txEn.Out(gpio.Low); err != nil {
			return err
		}
	}
	if rx == gpio.Low && l.rxEn != nil {
		if err := l.rxEn.Out(gpio.Low); err != nil {
			return err
		}
	}
	if tx == gpio.High && l.txEn != nil {
		if err := l.txEn.Out(gpio.High); err != nil {
			return err
		}
	}
	if rx == gpio.High && l.rxEn != nil {
		if err := l.rxEn.Out(gpio.High); err != nil {
			return err
		}
	}
	return nil
}

func (l *PinLines) WaitForCompletion(timeout time.Duration) bool {
	return l.completion.WaitForCompletion(timeout)
}

func (l *PinLines) ReadLevel() bool {
	return l.dio0.Read() == gpio.High
}

// Close stops the edge watcher and halts every pin. It is safe to call twice.
func (l *PinLines) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if l.stop != nil {
		close(l.stop)
		<-l.watchDone
	}
	var first error
	for _, h := range []halter{l.txEn, l.rxEn, l.dio0, l.reset} {
		if h == nil {
			continue
		}
		if err := h.Halt(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
