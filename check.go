package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Waziup/single_chan_radio/SX127X"
	"github.com/Waziup/single_chan_radio/lora"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check SPI, chip version and GPIO access",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecks(cmd.OutOrStdout(), globalConfig.SX127XConf, preflight{})
	},
}

// preflight opens the real hardware. Tests swap it out.
type preflight struct {
	statFn    func(string) (os.FileInfo, error)
	openBus   func(*lora.Config) (SX127X.Bus, error)
	openLines func(*lora.Config) (SX127X.Lines, error)
}

func (p preflight) withDefaults() preflight {
	if p.statFn == nil {
		p.statFn = os.Stat
	}
	if p.openBus == nil {
		p.openBus = func(cfg *lora.Config) (SX127X.Bus, error) {
			if err := SX127X.HostInit(); err != nil {
				return nil, err
			}
			return SX127X.OpenBus(cfg)
		}
	}
	if p.openLines == nil {
		p.openLines = func(cfg *lora.Config) (SX127X.Lines, error) {
			if err := SX127X.HostInit(); err != nil {
				return nil, err
			}
			return SX127X.OpenLines(cfg)
		}
	}
	return p
}

func runChecks(w io.Writer, cfg *lora.Config, p preflight) error {
	p = p.withDefaults()
	fmt.Fprintln(w, "running preflight system check ...")
	spiOK := checkSPI(w, cfg, p)
	gpioOK := checkGPIO(w, cfg, p)
	if !spiOK || !gpioOK {
		fmt.Fprintln(w, "system check failed")
		return fmt.Errorf("preflight check failed")
	}
	fmt.Fprintln(w, "system ready")
	return nil
}

func checkSPI(w io.Writer, cfg *lora.Config, p preflight) bool {
	if strings.HasPrefix(cfg.SPI, "/dev/") {
		if _, err := p.statFn(cfg.SPI); err != nil {
			fmt.Fprintf(w, "[FAIL] SPI device %s not found, enable SPI on the board\n", cfg.SPI)
			return false
		}
	}
	bus, err := p.openBus(cfg)
	if err != nil {
		fmt.Fprintf(w, "[FAIL] can not open SPI %s: %v\n", cfg.SPI, err)
		return false
	}
	defer bus.Close()
	version, err := bus.ReadRegister(SX127X.RegVersion)
	if err != nil {
		fmt.Fprintf(w, "[FAIL] SPI read failed: %v\n", err)
		return false
	}
	if version != SX127X.ChipVersion {
		fmt.Fprintf(w, "[FAIL] unexpected chip version 0x%02X\n", version)
		return false
	}
	fmt.Fprintf(w, "[ OK ] SX127x detected (version 0x%02X)\n", version)
	return true
}

func checkGPIO(w io.Writer, cfg *lora.Config, p preflight) bool {
	lines, err := p.openLines(cfg)
	if err != nil {
		fmt.Fprintf(w, "[FAIL] GPIO check failed: %v\n", err)
		return false
	}
	if err := lines.Close(); err != nil {
		log.Warn("can not release gpio lines", zap.Error(err))
	}
	fmt.Fprintf(w, "[ OK ] GPIO access (reset %s, dio0 %s)\n", cfg.Pins.Reset, cfg.Pins.DIO0)
	return true
}
