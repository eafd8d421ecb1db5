package lora

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"time"
)

// RxPacket is one packet taken from the radio FIFO.
type RxPacket struct {
	Time *time.Time // UTC time of pkt RX

	Freq float64 // RX central frequency in MHz

	StatCRC int8 // CRC status: 1 = OK, -1 = fail, 0 = no CRC

	// LoRa spreading factor: SF7 (0x07) to SF12 (0x0c)
	Datarate uint8
	// LoRa bandwidth in Hz
	LoRaBW uint32
	// LoRa ECC coding rate: 4/5 (0x05), 4/6 (0x06), 4/7 (0x07), 4/8 (0x08)
	LoRaCR uint8

	RSSI float32 // packet RSSI in dBm

	LoRaSNR float32 // packet SNR, in dB

	Data []byte // packet payload
}

func (rx *RxPacket) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "{")
	if rx.Time != nil {
		fmt.Fprintf(&buf, "\"time\":\"%s\",", rx.Time.Format(time.RFC3339Nano))
	}
	fmt.Fprintf(&buf, "\"freq\":%.3f", rx.Freq)
	fmt.Fprintf(&buf, ",\"stat\":%d", rx.StatCRC)
	fmt.Fprint(&buf, ",\"modu\":\"LORA\"")
	if rx.Datarate != 0 {
		fmt.Fprintf(&buf, ",\"datr\":\"SF%d%s\"", rx.Datarate, bwString(rx.LoRaBW))
	}
	if rx.LoRaCR != 0 {
		fmt.Fprintf(&buf, ",\"codr\":\"4/%d\"", rx.LoRaCR)
	}
	fmt.Fprintf(&buf, ",\"lsnr\":%.1f", rx.LoRaSNR)
	fmt.Fprintf(&buf, ",\"rssi\":%.0f", rx.RSSI)
	fmt.Fprintf(&buf, ",\"size\":%d", len(rx.Data))
	fmt.Fprintf(&buf, ",\"data\":\"%s\"}", base64.StdEncoding.EncodeToString(rx.Data))
	return buf.Bytes(), nil
}

func (rx *RxPacket) String() string {
	return fmt.Sprintf("LoRa: %.2f MHz, RSSI %.0f dBm, SNR %.1f dB, %d bytes: %q", rx.Freq, rx.RSSI, rx.LoRaSNR, len(rx.Data), rx.Data)
}

// Bandwidths lists the LoRa bandwidths in Hz, indexed by their RegModemConfig1 code.
var Bandwidths = []uint32{
	7800,
	10400,
	15600,
	20800,
	31250,
	41700,
	62500,
	125000,
	250000,
	500000,
}

var bwStr = []string{
	"BW7.8",
	"BW10.4",
	"BW15.6",
	"BW20.8",
	"BW31.2",
	"BW41.7",
	"BW62.5",
	"BW125",
	"BW250",
	"BW500",
}

// BandwidthCode returns the RegModemConfig1 code of a bandwidth in Hz.
func BandwidthCode(hz uint32) (uint8, error) {
	for i, bw := range Bandwidths {
		if bw == hz {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("unknown lora bandwidth %d Hz", hz)
}

func bwString(hz uint32) string {
	code, err := BandwidthCode(hz)
	if err != nil {
		return ""
	}
	return bwStr[code]
}

// ParseCodingRate parses "4/5" .. "4/8" (and the "2/3", "1/2" aliases)
// into the coding rate denominator.
func ParseCodingRate(s string) (uint8, error) {
	switch s {
	case "4/5":
		return 5, nil
	case "4/6", "2/3":
		return 6, nil
	case "4/7":
		return 7, nil
	case "4/8", "2/4", "1/2":
		return 8, nil
	}
	return 0, fmt.Errorf("can not parse lora coderate: %q", s)
}
