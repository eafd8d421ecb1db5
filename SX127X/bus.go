package SX127X

import (
	"io"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Bus is byte-wise register access to the chip.
//
// ReadBurst and WriteBurst on RegFifo move contiguous FIFO bytes starting at
// the chip's internal FIFO pointer, which auto-increments.
type Bus interface {
	ReadRegister(addr byte) (byte, error)
	WriteRegister(addr, value byte) error
	ReadBurst(addr byte, n int) ([]byte, error)
	WriteBurst(addr byte, values []byte) error
	Close() error
}

// DefaultSPISpeed is well below the 10 MHz limit of the chip.
const DefaultSPISpeed = 5 * physic.MegaHertz

// SPIBus implements Bus on a periph.io SPI connection.
type SPIBus struct {
	conn   spi.Conn
	closer io.Closer
}

// NewSPIBus wraps an already configured connection (mode 0, 8 bits).
// closer may be nil.
func NewSPIBus(conn spi.Conn, closer io.Closer) *SPIBus {
	return &SPIBus{conn: conn, closer: closer}
}

// OpenSPIBus connects to port in SPI mode 0. The bus owns port and closes it.
func OpenSPIBus(port spi.PortCloser, speed physic.Frequency) (*SPIBus, error) {
	if speed == 0 {
		speed = DefaultSPISpeed
	}
	conn, err := port.Connect(speed, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, &BusError{Op: "connect", Err: err}
	}
	return NewSPIBus(conn, port), nil
}

func (b *SPIBus) ReadRegister(addr byte) (byte, error) {
	w := [2]byte{addr &^ spiWrite, 0x00}
	var r [2]byte
	if err := b.conn.Tx(w[:], r[:]); err != nil {
		return 0, &BusError{Op: "read", Addr: addr, Err: err}
	}
	return r[1], nil
}

func (b *SPIBus) WriteRegister(addr, value byte) error {
	w := [2]byte{addr | spiWrite, value}
	var r [2]byte
	if err := b.conn.Tx(w[:], r[:]); err != nil {
		return &BusError{Op: "write", Addr: addr, Err: err}
	}
	return nil
}

func (b *SPIBus) ReadBurst(addr byte, n int) ([]byte, error) {
	if n <= 0 {
		return []byte{}, nil
	}
	w := make([]byte, n+1)
	r := make([]byte, n+1)
	w[0] = addr &^ spiWrite
	if err := b.conn.Tx(w, r); err != nil {
		return nil, &BusError{Op: "burst read", Addr: addr, Err: err}
	}
	return r[1:], nil
}

func (b *SPIBus) WriteBurst(addr byte, values []byte) error {
	if len(values) == 0 {
		return nil
	}
	w := make([]byte, len(values)+1)
	r := make([]byte, len(values)+1)
	w[0] = addr | spiWrite
	copy(w[1:], values)
	if err := b.conn.Tx(w, r); err != nil {
		return &BusError{Op: "burst write", Addr: addr, Err: err}
	}
	return nil
}

func (b *SPIBus) String() string {
	return b.conn.String()
}

// Close releases the SPI port, if the bus owns one.
func (b *SPIBus) Close() error {
	if b.closer == nil {
		return nil
	}
	c := b.closer
	b.closer = nil
	return c.Close()
}
