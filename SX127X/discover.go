package SX127X

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/Waziup/single_chan_radio/lora"
)

// HostInit loads the periph.io host drivers. It may be called more than once.
func HostInit() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("can not init host drivers: %v", err)
	}
	return nil
}

// Discover opens the SPI port and the GPIO pins named in cfg and returns an
// initialized radio in Standby.
func Discover(cfg *lora.Config, log *zap.Logger) (*Radio, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidArgument, err.Error())
	}
	opts, err := OptsFromConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidArgument, err.Error())
	}
	opts.Logger = log

	if err := HostInit(); err != nil {
		return nil, err
	}
	lines, err := OpenLines(cfg)
	if err != nil {
		return nil, err
	}
	bus, err := OpenBus(cfg)
	if err != nil {
		lines.Close()
		return nil, err
	}
	return New(bus, lines, opts)
}

// OpenBus opens the SPI port named in cfg.
func OpenBus(cfg *lora.Config) (*SPIBus, error) {
	port, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, &BusError{Op: "open " + cfg.SPI, Err: err}
	}
	return OpenSPIBus(port, physic.Frequency(cfg.SPISpeed)*physic.Hertz)
}

// OpenLines looks up and claims the GPIO pins named in cfg.
func OpenLines(cfg *lora.Config) (*PinLines, error) {
	reset, err := pinByName("reset", cfg.Pins.Reset)
	if err != nil {
		return nil, err
	}
	dio0, err := pinByName("dio0", cfg.Pins.DIO0)
	if err != nil {
		return nil, err
	}
	p := Pins{Reset: reset, DIO0: dio0, EdgeIRQ: cfg.EdgeIRQ}
	if cfg.Pins.TxEn != "" {
		if p.TxEn, err = pinByName("txen", cfg.Pins.TxEn); err != nil {
			return nil, err
		}
	}
	if cfg.Pins.RxEn != "" {
		if p.RxEn, err = pinByName("rxen", cfg.Pins.RxEn); err != nil {
			return nil, err
		}
	}
	return NewPinLines(p)
}

func pinByName(role, name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("sx127x: no gpio %q for %s", name, role)
	}
	return p, nil
}
