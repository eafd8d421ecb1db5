package lora

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandwidthCode(t *testing.T) {
	code, err := BandwidthCode(125000)
	require.NoError(t, err)
	assert.Equal(t, uint8(7), code)

	code, err = BandwidthCode(7800)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), code)

	_, err = BandwidthCode(100000)
	assert.Error(t, err)
}

func TestParseCodingRate(t *testing.T) {
	for s, want := range map[string]uint8{"4/5": 5, "4/6": 6, "2/3": 6, "4/7": 7, "4/8": 8, "1/2": 8} {
		cr, err := ParseCodingRate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, cr, s)
	}
	_, err := ParseCodingRate("4/9")
	assert.Error(t, err)
}

func TestRxPacketJSON(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rx := &RxPacket{
		Time:     &ts,
		Freq:     868.1,
		StatCRC:  1,
		Datarate: 7,
		LoRaBW:   125000,
		LoRaCR:   5,
		RSSI:     -57,
		LoRaSNR:  9.5,
		Data:     []byte("hi"),
	}
	data, err := json.Marshal(rx)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2024-05-01T12:00:00Z", got["time"])
	assert.Equal(t, 868.1, got["freq"])
	assert.Equal(t, "SF7BW125", got["datr"])
	assert.Equal(t, "4/5", got["codr"])
	assert.Equal(t, float64(-57), got["rssi"])
	assert.Equal(t, 9.5, got["lsnr"])
	assert.Equal(t, float64(2), got["size"])
	assert.Equal(t, "aGk=", got["data"])
}

func TestRxPacketJSONMinimal(t *testing.T) {
	data, err := json.Marshal(&RxPacket{Freq: 433})
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.NotContains(t, got, "time")
	assert.NotContains(t, got, "datr")
	assert.Equal(t, float64(0), got["size"])
}

func TestRxPacketString(t *testing.T) {
	rx := &RxPacket{Freq: 433, RSSI: -80, LoRaSNR: 7.5, Data: []byte("ping")}
	assert.Equal(t, `LoRa: 433.00 MHz, RSSI -80 dBm, SNR 7.5 dB, 4 bytes: "ping"`, rx.String())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cases := []func(c *Config){
		func(c *Config) { c.Freq = 100 },
		func(c *Config) { c.Power = 21 },
		func(c *Config) { c.Power = -1 },
		func(c *Config) { c.Datarate = 6 },
		func(c *Config) { c.LoRaBW = 1 },
		func(c *Config) { c.LoRaCR = "5/4" },
		func(c *Config) { c.SPI = "" },
		func(c *Config) { c.Pins.DIO0 = "" },
	}
	for i, mod := range cases {
		c := DefaultConfig()
		mod(c)
		assert.Error(t, c.Validate(), "case %d", i)
	}
}
