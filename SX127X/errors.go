package SX127X

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrIdentityMismatch is returned by New when RegVersion does not hold ChipVersion.
	ErrIdentityMismatch = errors.New("sx127x: unexpected chip version")
	// ErrInvalidArgument is returned before any bus access for out of range parameters.
	ErrInvalidArgument = errors.New("sx127x: invalid argument")
	// ErrTxTimeout means DIO0 never signalled TxDone. The chip state is undefined
	// afterwards and the radio should be re-initialized.
	ErrTxTimeout = errors.New("sx127x: tx timeout")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("sx127x: radio is closed")
)

// BusError is a transport failure of the register bus.
type BusError struct {
	Op   string
	Addr byte
	Err  error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("sx127x: %s 0x%02X: %v", e.Op, e.Addr, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// Cause lets github.com/pkg/errors.Cause reach the transport error.
func (e *BusError) Cause() error { return e.Err }

// IsBusError reports whether err came from the register bus.
func IsBusError(err error) bool {
	var be *BusError
	return errors.As(err, &be)
}
