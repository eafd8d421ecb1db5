package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Waziup/single_chan_radio/SX127X"
	"github.com/Waziup/single_chan_radio/logger"
	"github.com/Waziup/single_chan_radio/lora"
)

type radio interface {
	Send(data []byte) error
	Receive() (*lora.RxPacket, error)
}

func main() {
	log, err := logger.New(logger.LevelWarning)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := lora.DefaultConfig()
	cfg.Freq = 865.2
	cfg.Power = 14
	cfg.PABoost = true
	cfg.Datarate = 12
	cfg.LoRaBW = 125000
	cfg.LoRaCR = "4/5"

	r, err := SX127X.Discover(cfg, log)
	if err != nil {
		log.Error("can not activate radio", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
	fmt.Println("LoRa successfully configured")

	err = multierr.Append(chat(log, r, os.Stdin, os.Stdout), r.Close())
	if err != nil {
		log.Error("chat failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

// chat sends every input line and prints received packets until in is
// exhausted or the radio fails. Only the calling goroutine touches r.
func chat(log *zap.Logger, r radio, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "Your name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	output := make(chan string)
	go func() {
		defer close(output)
		for {
			fmt.Fprintf(out, "> ")
			line, err := reader.ReadString('\n')
			if line = strings.TrimRight(line, "\n"); line != "" {
				output <- fmt.Sprintf("[%5s] %s", name, line)
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case line, ok := <-output:
			if !ok {
				return nil
			}
			if err := r.Send([]byte(line)); err != nil {
				return err
			}
		default:
			pkt, err := r.Receive()
			if err != nil {
				log.Warn("receive failed", zap.Error(err))
				continue
			}
			if pkt != nil {
				fmt.Fprintf(out, "\r< %s\n> ", pkt.Data)
			}
		}
	}
}
