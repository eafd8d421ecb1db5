package SX127X

import (
	"errors"
	"time"
)

var errInjected = errors.New("injected transport failure")

type busOp struct {
	write bool
	burst bool
	addr  byte
	data  []byte
}

// fakeChip models the registers and FIFO of an SX127x in LoRa mode.
// A transmitted packet is looped back into the FIFO on the next receive.
type fakeChip struct {
	regs [0x80]byte
	fifo [FifoSize]byte
	ops  []busOp

	failAddr int // address whose access fails, -1 for none
	closed   int

	noTxDone bool
	crcError bool
	rxAddr   byte
	pending  []byte
}

func newFakeChip(version byte) *fakeChip {
	c := &fakeChip{failAddr: -1, rxAddr: 0x40}
	c.regs[RegVersion] = version
	c.regs[RegPaConfig] = 0x4F
	c.regs[RegLna] = 0x20
	c.regs[RegModemConfig1] = 0x72
	c.regs[RegModemConfig2] = 0x70
	c.regs[RegPreambleLsb] = 0x08
	c.regs[RegSyncWord] = 0x12
	c.regs[RegPktRssiValue] = 100
	c.regs[RegPktSnrValue] = 40
	return c
}

func (c *fakeChip) fail(addr byte) error {
	if c.failAddr == int(addr) {
		return &BusError{Op: "fake", Addr: addr, Err: errInjected}
	}
	return nil
}

func (c *fakeChip) readFifo() byte {
	v := c.fifo[c.regs[RegFifoAddrPtr]]
	c.regs[RegFifoAddrPtr]++
	return v
}

func (c *fakeChip) writeFifo(v byte) {
	c.fifo[c.regs[RegFifoAddrPtr]] = v
	c.regs[RegFifoAddrPtr]++
}

func (c *fakeChip) ReadRegister(addr byte) (byte, error) {
	c.ops = append(c.ops, busOp{addr: addr})
	if err := c.fail(addr); err != nil {
		return 0, err
	}
	if addr == RegFifo {
		return c.readFifo(), nil
	}
	return c.regs[addr], nil
}

func (c *fakeChip) WriteRegister(addr, value byte) error {
	c.ops = append(c.ops, busOp{write: true, addr: addr, data: []byte{value}})
	if err := c.fail(addr); err != nil {
		return err
	}
	switch addr {
	case RegFifo:
		c.writeFifo(value)
	case RegIrqFlags:
		c.regs[RegIrqFlags] &^= value
	case RegOpMode:
		c.regs[RegOpMode] = value
		c.enter(value & 0x07)
	default:
		c.regs[addr] = value
	}
	return nil
}

func (c *fakeChip) ReadBurst(addr byte, n int) ([]byte, error) {
	c.ops = append(c.ops, busOp{burst: true, addr: addr})
	if err := c.fail(addr); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	for i := range out {
		if addr == RegFifo {
			out[i] = c.readFifo()
		} else {
			out[i] = c.regs[int(addr)+i]
		}
	}
	return out, nil
}

func (c *fakeChip) WriteBurst(addr byte, values []byte) error {
	c.ops = append(c.ops, busOp{write: true, burst: true, addr: addr, data: append([]byte(nil), values...)})
	if err := c.fail(addr); err != nil {
		return err
	}
	for i, v := range values {
		if addr == RegFifo {
			c.writeFifo(v)
		} else {
			c.regs[int(addr)+i] = v
		}
	}
	return nil
}

func (c *fakeChip) Close() error {
	c.closed++
	return nil
}

func (c *fakeChip) enter(mode byte) {
	switch mode {
	case ModeTx:
		n := int(c.regs[RegPayloadLength])
		start := int(c.regs[RegFifoTxBaseAddr])
		c.pending = make([]byte, n)
		for i := range c.pending {
			c.pending[i] = c.fifo[(start+i)%FifoSize]
		}
		if !c.noTxDone {
			c.regs[RegIrqFlags] |= IrqTxDone
		}
	case ModeRxContinuous, ModeRxSingle:
		if c.pending == nil {
			return
		}
		for i, v := range c.pending {
			c.fifo[(int(c.rxAddr)+i)%FifoSize] = v
		}
		c.regs[RegFifoRxCurrentAddr] = c.rxAddr
		c.regs[RegRxNbBytes] = byte(len(c.pending))
		c.regs[RegIrqFlags] |= IrqRxDone
		if c.crcError {
			c.regs[RegIrqFlags] |= IrqPayloadCrcError
		}
		c.pending = nil
	}
}

// writes returns the values written to a single register, in order.
func (c *fakeChip) writes(addr byte) []byte {
	var out []byte
	for _, op := range c.ops {
		if op.write && !op.burst && op.addr == addr {
			out = append(out, op.data[0])
		}
	}
	return out
}

func (c *fakeChip) countWrites() int {
	n := 0
	for _, op := range c.ops {
		if op.write {
			n++
		}
	}
	return n
}

func (c *fakeChip) fifoBurstReads() int {
	n := 0
	for _, op := range c.ops {
		if op.burst && !op.write && op.addr == RegFifo {
			n++
		}
	}
	return n
}

// fakeLines reports DIO0 high whenever TxDone or RxDone is pending in the chip.
type fakeLines struct {
	chip   *fakeChip
	modes  []LineMode
	resets int
	closed int
	waits  []time.Duration
	never  bool

	// spurious reports a completion even when DIO0 is low
	spurious bool
}

func (l *fakeLines) PulseReset() error {
	l.resets++
	return nil
}

func (l *fakeLines) SetMode(m LineMode) error {
	l.modes = append(l.modes, m)
	return nil
}

func (l *fakeLines) WaitForCompletion(timeout time.Duration) bool {
	l.waits = append(l.waits, timeout)
	if l.never {
		return false
	}
	return l.spurious || l.ReadLevel()
}

func (l *fakeLines) ReadLevel() bool {
	return l.chip.regs[RegIrqFlags]&(IrqTxDone|IrqRxDone) != 0
}

func (l *fakeLines) Close() error {
	l.closed++
	return nil
}

func (l *fakeLines) mode() LineMode {
	if len(l.modes) == 0 {
		return LineIdle
	}
	return l.modes[len(l.modes)-1]
}
