package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Waziup/single_chan_radio/lora"
)

var (
	receiveCount      int
	receiveJSON       bool
	receiveContinuous bool
)

var receiveCmd = &cobra.Command{
	Use:   "receive",
	Short: "Print received packets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		radio, err := openRadio()
		if err != nil {
			return err
		}
		defer radio.Close()

		if receiveContinuous {
			if err := radio.SetModeRx(); err != nil {
				return err
			}
		}
		log.Info("waiting for packets ...")
		return receiveLoop(ctx, radio, cmd.OutOrStdout(), receiveCount, receiveJSON)
	},
}

func init() {
	receiveCmd.Flags().IntVarP(&receiveCount, "count", "n", 0, "stop after n packets (0: run until interrupted)")
	receiveCmd.Flags().BoolVar(&receiveJSON, "json", false, "print packets as JSON lines")
	receiveCmd.Flags().BoolVar(&receiveContinuous, "continuous", false, "keep the radio in continuous receive")
}

type receiver interface {
	Receive() (*lora.RxPacket, error)
}

// receiveLoop prints packets until count packets were seen, ctx is done or
// the radio fails. Timeouts and CRC failures yield no packet and are skipped.
func receiveLoop(ctx context.Context, radio receiver, w io.Writer, count int, asJSON bool) error {
	enc := json.NewEncoder(w)
	for n := 0; count == 0 || n < count; {
		if ctx.Err() != nil {
			return nil
		}
		pkt, err := radio.Receive()
		if err != nil {
			return err
		}
		if pkt == nil {
			log.Debug("no packet")
			continue
		}
		n++
		if asJSON {
			if err := enc.Encode(pkt); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(w, "> %s\n", pkt)
		}
		log.Debug("packet", zap.Int("n", n))
	}
	return nil
}
