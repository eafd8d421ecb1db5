package lora

import (
	"fmt"
)

// Pinout names the GPIO lines wired to the radio module. Names are looked up
// in the periph.io gpio registry ("GPIO22", "22", ...).
type Pinout struct {
	Reset string `json:"reset" yaml:"reset"`
	DIO0  string `json:"dio0" yaml:"dio0"`
	TxEn  string `json:"txen,omitempty" yaml:"txen,omitempty"` // antenna switch, optional
	RxEn  string `json:"rxen,omitempty" yaml:"rxen,omitempty"` // antenna switch, optional
}

// Config is the radio section of the configuration file.
type Config struct {
	Freq float64 `json:"freq" yaml:"freq"` // center frequency in MHz

	Power int `json:"power" yaml:"power"` // TX output power in dBm

	// LoRa spreading factor 7..12, 0 keeps the chip default
	Datarate uint8 `json:"spread_factor" yaml:"spread_factor"`
	// LoRa bandwidth in Hz, 0 keeps the chip default
	LoRaBW uint32 `json:"bandwidth" yaml:"bandwidth"`
	// LoRa coderate "4/5" .. "4/8", empty keeps the chip default
	LoRaCR string `json:"coderate" yaml:"coderate"`

	SyncWord       uint8  `json:"sync_word" yaml:"sync_word"` // 0 keeps the chip default (0x12)
	PreambleLength uint16 `json:"preamble" yaml:"preamble"`   // 0 keeps the chip default (8)
	CRC            bool   `json:"crc" yaml:"crc"`             // append and check payload CRC
	PABoost        bool   `json:"pa_boost" yaml:"pa_boost"`   // use the PA_BOOST output pin

	SPI      string `json:"spi" yaml:"spi"`                   // SPI port, e.g. "/dev/spidev0.0"
	SPISpeed uint32 `json:"spi_speed_hz" yaml:"spi_speed_hz"` // 0 selects 5 MHz

	Pins    Pinout `json:"pins" yaml:"pins"`
	EdgeIRQ bool   `json:"edge_irq" yaml:"edge_irq"` // wait on DIO0 edges instead of polling
}

// DefaultConfig matches the usual Raspberry Pi wiring of a RFM9x/SX127x hat.
func DefaultConfig() *Config {
	return &Config{
		Freq:  433.0,
		Power: 17,
		SPI:   "/dev/spidev0.0",
		Pins: Pinout{
			Reset: "GPIO22",
			DIO0:  "GPIO4",
		},
	}
}

// Validate checks the ranges the radio accepts.
func (c *Config) Validate() error {
	if c.Freq < 137 || c.Freq > 1020 {
		return fmt.Errorf("freq %.3f MHz out of range 137..1020", c.Freq)
	}
	if c.Power < 0 || c.Power > 20 {
		return fmt.Errorf("power %d dBm out of range 0..20", c.Power)
	}
	if c.Datarate != 0 && (c.Datarate < 7 || c.Datarate > 12) {
		return fmt.Errorf("spread_factor SF%d out of range SF7..SF12", c.Datarate)
	}
	if c.LoRaBW != 0 {
		if _, err := BandwidthCode(c.LoRaBW); err != nil {
			return err
		}
	}
	if c.LoRaCR != "" {
		if _, err := ParseCodingRate(c.LoRaCR); err != nil {
			return err
		}
	}
	if c.SPI == "" {
		return fmt.Errorf("no spi port")
	}
	if c.Pins.Reset == "" || c.Pins.DIO0 == "" {
		return fmt.Errorf("reset and dio0 pins are required")
	}
	return nil
}
