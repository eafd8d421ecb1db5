package main

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Waziup/single_chan_radio/SX127X"
	"github.com/Waziup/single_chan_radio/logger"
	"github.com/Waziup/single_chan_radio/lora"
)

// radio is the part of *SX127X.Radio the sender uses.
type radio interface {
	SetCodingRate(cr uint8) error
	SetBandwidth(hz uint32) error
	SetSpreadingFactor(sf uint8) error
	SetSyncWord(w uint8) error
	Send(data []byte) error
	Close() error
}

func main() {
	log, err := logger.New(logger.LevelNormal)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	cfg := lora.DefaultConfig()
	cfg.Freq = 868.1
	cfg.Power = 14
	cfg.PABoost = true

	open := func() (radio, error) { return SX127X.Discover(cfg, log) }
	if err := run(log, open); err != nil {
		log.Error("minimal sender failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

// run configures the radio, sends one packet and always closes the radio.
func run(log *zap.Logger, open func() (radio, error)) (err error) {
	r, err := open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	log.Info("SX127x init ...")
	steps := []struct {
		name string
		fn   func() error
	}{
		{"SetCodingRate", func() error { return r.SetCodingRate(5) }},
		{"SetBandwidth", func() error { return r.SetBandwidth(125000) }},
		{"SetSpreadingFactor", func() error { return r.SetSpreadingFactor(12) }},
		{"SetSyncWord", func() error { return r.SetSyncWord(0x34) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			log.Error(s.name, zap.Error(err))
			return err
		}
		log.Info(s.name + " OK")
	}
	log.Info("SX127x successfully configured")

	msg := []byte{0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7}
	start := time.Now()
	if err := r.Send(msg); err != nil {
		return err
	}
	log.Info("LoRa sent", zap.Duration("took", time.Since(start)))
	return nil
}
