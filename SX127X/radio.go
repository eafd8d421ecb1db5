// Package SX127X drives a Semtech SX1276/77/78/79 LoRa transceiver over a
// register bus and a few GPIO lines.
//
// A Radio moves exactly one packet per Send or Receive call. It is not safe
// for concurrent use: calls on one Radio must not overlap, as their register
// writes would interleave on the bus.
package SX127X

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Waziup/single_chan_radio/lora"
)

// Mode is the operating mode of the chip. Its value is the RegOpMode mode field.
type Mode byte

const (
	Sleep        Mode = ModeSleep
	Standby      Mode = ModeStandby
	Tx           Mode = ModeTx
	RxContinuous Mode = ModeRxContinuous
	RxSingle     Mode = ModeRxSingle
)

func (m Mode) String() string {
	switch m {
	case Sleep:
		return "sleep"
	case Standby:
		return "standby"
	case Tx:
		return "tx"
	case RxContinuous:
		return "rx-continuous"
	case RxSingle:
		return "rx-single"
	}
	return fmt.Sprintf("Mode(0x%02X)", byte(m))
}

func (m Mode) lineMode() LineMode {
	switch m {
	case Sleep:
		return LineSleep
	case Tx:
		return LineTx
	case RxContinuous, RxSingle:
		return LineRx
	}
	return LineIdle
}

const (
	DefaultFreq      = 433.0
	DefaultPower     = 17
	DefaultTxTimeout = 2 * time.Second
	DefaultRxTimeout = 5 * time.Second

	MinFreq  = 137.0
	MaxFreq  = 1020.0
	MinPower = 0
	MaxPower = 20
)

// Opts configures New. Zero fields select the defaults; zero modem fields
// leave the chip's reset values untouched.
type Opts struct {
	Freq  float64 // MHz
	Power *int    // dBm, nil selects DefaultPower

	SpreadingFactor uint8  // 7..12
	Bandwidth       uint32 // Hz
	CodingRate      uint8  // denominator 5..8
	PreambleLength  uint16
	SyncWord        uint8
	CRC             bool
	PABoost         bool

	TxTimeout time.Duration
	RxTimeout time.Duration

	Logger *zap.Logger
}

// OptsFromConfig converts the radio section of a configuration file.
func OptsFromConfig(cfg *lora.Config) (Opts, error) {
	power := cfg.Power
	opts := Opts{
		Freq:            cfg.Freq,
		Power:           &power,
		SpreadingFactor: cfg.Datarate,
		Bandwidth:       cfg.LoRaBW,
		PreambleLength:  cfg.PreambleLength,
		SyncWord:        cfg.SyncWord,
		CRC:             cfg.CRC,
		PABoost:         cfg.PABoost,
	}
	if cfg.LoRaCR != "" {
		cr, err := lora.ParseCodingRate(cfg.LoRaCR)
		if err != nil {
			return opts, err
		}
		opts.CodingRate = cr
	}
	return opts, nil
}

// Radio is the handle of one physical chip. It exclusively owns its Bus and Lines.
type Radio struct {
	bus   Bus
	lines Lines
	log   *zap.Logger

	freq      float64
	mode      Mode
	closed    bool
	txTimeout time.Duration
	rxTimeout time.Duration

	sf uint8
	bw uint32
	cr uint8
}

// New resets the chip, checks its identity and applies the configuration,
// leaving the radio in Standby. New takes ownership of bus and lines: on
// error both are closed before returning.
func New(bus Bus, lines Lines, opts Opts) (*Radio, error) {
	r := &Radio{
		bus:       bus,
		lines:     lines,
		log:       opts.Logger,
		freq:      opts.Freq,
		mode:      Standby,
		txTimeout: opts.TxTimeout,
		rxTimeout: opts.RxTimeout,
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.freq == 0 {
		r.freq = DefaultFreq
	}
	if r.txTimeout <= 0 {
		r.txTimeout = DefaultTxTimeout
	}
	if r.rxTimeout <= 0 {
		r.rxTimeout = DefaultRxTimeout
	}
	if err := r.init(opts); err != nil {
		return nil, multierr.Append(err, r.release())
	}
	return r, nil
}

func (r *Radio) init(opts Opts) error {
	power := DefaultPower
	if opts.Power != nil {
		power = *opts.Power
	}
	if err := checkFrequency(r.freq); err != nil {
		return err
	}
	if err := checkPower(power); err != nil {
		return err
	}

	if err := r.lines.PulseReset(); err != nil {
		return err
	}
	version, err := r.bus.ReadRegister(RegVersion)
	if err != nil {
		return err
	}
	if version != ChipVersion {
		return errors.Wrapf(ErrIdentityMismatch, "version 0x%02X, want 0x%02X", version, ChipVersion)
	}

	if err := r.setMode(Sleep); err != nil {
		return err
	}
	if err := r.writeFrequency(r.freq); err != nil {
		return err
	}
	if err := r.bus.WriteRegister(RegFifoTxBaseAddr, FifoTxBase); err != nil {
		return err
	}
	if err := r.bus.WriteRegister(RegFifoRxBaseAddr, FifoRxBase); err != nil {
		return err
	}
	lna, err := r.bus.ReadRegister(RegLna)
	if err != nil {
		return err
	}
	if err := r.bus.WriteRegister(RegLna, lna|LnaBoostHF); err != nil {
		return err
	}
	if err := r.bus.WriteRegister(RegModemConfig3, ModemConfig3AgcAuto); err != nil {
		return err
	}
	if err := r.applyModem(opts); err != nil {
		return err
	}
	if err := r.writeTxPower(power); err != nil {
		return err
	}
	if err := r.setMode(Standby); err != nil {
		return err
	}

	r.log.Debug("radio initialized",
		zap.Float64("freq_mhz", r.freq),
		zap.Int("power_dbm", power),
		zap.Uint8("version", version))
	return nil
}

func (r *Radio) applyModem(opts Opts) error {
	if opts.PABoost {
		if err := r.updateRegister(RegPaConfig, PaBoost, PaBoost); err != nil {
			return err
		}
	}
	if opts.SpreadingFactor != 0 {
		if err := r.SetSpreadingFactor(opts.SpreadingFactor); err != nil {
			return err
		}
	}
	if opts.Bandwidth != 0 {
		if err := r.SetBandwidth(opts.Bandwidth); err != nil {
			return err
		}
	}
	if opts.CodingRate != 0 {
		if err := r.SetCodingRate(opts.CodingRate); err != nil {
			return err
		}
	}
	if opts.PreambleLength != 0 {
		if err := r.SetPreambleLength(opts.PreambleLength); err != nil {
			return err
		}
	}
	if opts.SyncWord != 0 {
		if err := r.SetSyncWord(opts.SyncWord); err != nil {
			return err
		}
	}
	if opts.CRC {
		if err := r.SetCRC(true); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the bus and the GPIO lines. Any later call returns ErrClosed.
func (r *Radio) Close() error {
	if r.closed {
		return ErrClosed
	}
	return r.release()
}

func (r *Radio) release() error {
	r.closed = true
	return multierr.Append(r.lines.Close(), r.bus.Close())
}

// Mode returns the last mode the radio was switched to.
func (r *Radio) Mode() Mode {
	return r.mode
}

// Frequency returns the configured center frequency in MHz.
func (r *Radio) Frequency() float64 {
	return r.freq
}

func (r *Radio) Sleep() error {
	return r.transition(Sleep)
}

// Standby is the idle mode, from which the FIFO can be accessed.
func (r *Radio) Standby() error {
	return r.transition(Standby)
}

func (r *Radio) SetModeTx() error {
	return r.transition(Tx)
}

// SetModeRx starts continuous receive. Receive then collects one packet per call.
func (r *Radio) SetModeRx() error {
	return r.transition(RxContinuous)
}

func (r *Radio) SetModeRxSingle() error {
	return r.transition(RxSingle)
}

func (r *Radio) transition(m Mode) error {
	if r.closed {
		return ErrClosed
	}
	return r.setMode(m)
}

// setMode drives the mode-select lines and writes RegOpMode. Both are needed
// for the chip and its antenna switch to agree.
func (r *Radio) setMode(m Mode) error {
	if err := r.lines.SetMode(m.lineMode()); err != nil {
		return err
	}
	if err := r.bus.WriteRegister(RegOpMode, byte(m)|ModeLongRange); err != nil {
		return err
	}
	if r.mode != m {
		r.log.Debug("mode", zap.Stringer("from", r.mode), zap.Stringer("to", m))
	}
	r.mode = m
	return nil
}

// Frf returns the 24 bit synthesizer word of a frequency in MHz.
func Frf(freqMHz float64) uint32 {
	return uint32(math.Round(freqMHz*1e6/FStep)) & 0xFFFFFF
}

func checkFrequency(freqMHz float64) error {
	if math.IsNaN(freqMHz) || freqMHz < MinFreq || freqMHz > MaxFreq {
		return errors.Wrapf(ErrInvalidArgument, "frequency %.3f MHz out of range %.0f..%.0f", freqMHz, MinFreq, MaxFreq)
	}
	return nil
}

func checkPower(dbm int) error {
	if dbm < MinPower || dbm > MaxPower {
		return errors.Wrapf(ErrInvalidArgument, "tx power %d dBm out of range %d..%d", dbm, MinPower, MaxPower)
	}
	return nil
}

// warnMode logs configuration writes the datasheet only allows in Sleep or
// Standby. The write still goes through.
func (r *Radio) warnMode(what string) {
	if r.mode != Sleep && r.mode != Standby {
		r.log.Warn("register write outside sleep/standby", zap.String("setting", what), zap.Stringer("mode", r.mode))
	}
}

// SetFrequency sets the center frequency in MHz.
func (r *Radio) SetFrequency(freqMHz float64) error {
	if r.closed {
		return ErrClosed
	}
	if err := checkFrequency(freqMHz); err != nil {
		return err
	}
	r.warnMode("frequency")
	if err := r.writeFrequency(freqMHz); err != nil {
		return err
	}
	r.freq = freqMHz
	return nil
}

func (r *Radio) writeFrequency(freqMHz float64) error {
	frf := Frf(freqMHz)
	if err := r.bus.WriteRegister(RegFrfMsb, byte(frf>>16)); err != nil {
		return err
	}
	if err := r.bus.WriteRegister(RegFrfMid, byte(frf>>8)); err != nil {
		return err
	}
	return r.bus.WriteRegister(RegFrfLsb, byte(frf))
}

// SetTxPower sets the low nibble of RegPaConfig to dbm, keeping the PA
// select bits.
func (r *Radio) SetTxPower(dbm int) error {
	if r.closed {
		return ErrClosed
	}
	if err := checkPower(dbm); err != nil {
		return err
	}
	r.warnMode("tx power")
	return r.writeTxPower(dbm)
}

func (r *Radio) writeTxPower(dbm int) error {
	return r.updateRegister(RegPaConfig, 0x0F, byte(dbm)&0x0F)
}

// updateRegister replaces the bits of mask with value.
func (r *Radio) updateRegister(addr, mask, value byte) error {
	v, err := r.bus.ReadRegister(addr)
	if err != nil {
		return err
	}
	return r.bus.WriteRegister(addr, v&^mask|value&mask)
}

func (r *Radio) SetSpreadingFactor(sf uint8) error {
	if r.closed {
		return ErrClosed
	}
	if sf < 7 || sf > 12 {
		return errors.Wrapf(ErrInvalidArgument, "spreading factor SF%d out of range SF7..SF12", sf)
	}
	r.warnMode("spreading factor")
	if err := r.updateRegister(RegModemConfig2, 0xF0, sf<<4); err != nil {
		return err
	}
	r.sf = sf
	return nil
}

// SetBandwidth sets the signal bandwidth in Hz, one of lora.Bandwidths.
func (r *Radio) SetBandwidth(hz uint32) error {
	if r.closed {
		return ErrClosed
	}
	code, err := lora.BandwidthCode(hz)
	if err != nil {
		return errors.Wrap(ErrInvalidArgument, err.Error())
	}
	r.warnMode("bandwidth")
	if err := r.updateRegister(RegModemConfig1, 0xF0, code<<4); err != nil {
		return err
	}
	r.bw = hz
	return nil
}

// SetCodingRate sets the coding rate 4/cr, cr in 5..8.
func (r *Radio) SetCodingRate(cr uint8) error {
	if r.closed {
		return ErrClosed
	}
	if cr < 5 || cr > 8 {
		return errors.Wrapf(ErrInvalidArgument, "coding rate 4/%d out of range 4/5..4/8", cr)
	}
	r.warnMode("coding rate")
	if err := r.updateRegister(RegModemConfig1, 0x0E, (cr-4)<<1); err != nil {
		return err
	}
	r.cr = cr
	return nil
}

func (r *Radio) SetPreambleLength(n uint16) error {
	if r.closed {
		return ErrClosed
	}
	r.warnMode("preamble length")
	if err := r.bus.WriteRegister(RegPreambleMsb, byte(n>>8)); err != nil {
		return err
	}
	return r.bus.WriteRegister(RegPreambleLsb, byte(n))
}

func (r *Radio) SetSyncWord(w uint8) error {
	if r.closed {
		return ErrClosed
	}
	r.warnMode("sync word")
	return r.bus.WriteRegister(RegSyncWord, w)
}

// SetCRC turns generation and check of the payload CRC on or off.
func (r *Radio) SetCRC(on bool) error {
	if r.closed {
		return ErrClosed
	}
	var v byte
	if on {
		v = 0x04
	}
	r.warnMode("crc")
	return r.updateRegister(RegModemConfig2, 0x04, v)
}

// clearIrq reads RegIrqFlags and writes the same bits back, clearing exactly
// the events that were observed.
func (r *Radio) clearIrq() (IrqFlags, error) {
	v, err := r.bus.ReadRegister(RegIrqFlags)
	if err != nil {
		return 0, err
	}
	if err := r.bus.WriteRegister(RegIrqFlags, v); err != nil {
		return 0, err
	}
	return IrqFlags(v), nil
}
