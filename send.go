package main

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Waziup/single_chan_radio/SX127X"
)

var sendHex bool

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Transmit one packet",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := parsePayload(args, sendHex)
		if err != nil {
			return err
		}
		radio, err := openRadio()
		if err != nil {
			return err
		}
		defer radio.Close()
		return send(radio, data)
	},
}

func init() {
	sendCmd.Flags().BoolVar(&sendHex, "hex", false, "message is hex encoded binary")
}

func parsePayload(args []string, isHex bool) ([]byte, error) {
	msg := strings.Join(args, " ")
	if !isHex {
		return []byte(msg), nil
	}
	data, err := hex.DecodeString(strings.ReplaceAll(msg, " ", ""))
	if err != nil {
		return nil, fmt.Errorf("can not decode hex payload: %v", err)
	}
	return data, nil
}

func send(radio *SX127X.Radio, data []byte) error {
	start := time.Now()
	if err := radio.Send(data); err != nil {
		return err
	}
	log.Info("packet sent", zap.Int("size", len(data)), zap.Duration("took", time.Since(start)))
	return nil
}
