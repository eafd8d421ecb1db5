package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Waziup/single_chan_radio/SX127X"
	"github.com/Waziup/single_chan_radio/logger"
)

var (
	configFile string
	logLevel   string
	freq       float64
	power      int
	spiPort    string

	globalConfig *GlobalConfig
	log          = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "lora",
	Short: "SX127x LoRa radio tool",
	Long: `lora drives a SX1276/77/78/79 LoRa module wired to the SPI bus and GPIO
lines of a Linux board.

The radio section of the configuration file (--config, JSON or YAML) sets the
SPI port, the reset/DIO0 pins and the modem parameters. --freq, --power and
--spi override it.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigFile, "configuration file (.json, .yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log", "l", "", "log level: none, error, warn, normal, verbose, debug")
	rootCmd.PersistentFlags().Float64VarP(&freq, "freq", "f", 0, "center frequency in MHz")
	rootCmd.PersistentFlags().IntVarP(&power, "power", "p", 0, "tx power in dBm (0..20)")
	rootCmd.PersistentFlags().StringVar(&spiPort, "spi", "", "SPI port, e.g. /dev/spidev0.0")

	rootCmd.AddCommand(checkCmd, sendCmd, receiveCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	globalConfig, err = LoadGlobalConfig(configFile)
	if err != nil {
		return err
	}
	cfg := globalConfig.SX127XConf
	flags := cmd.Flags()
	if flags.Changed("freq") {
		cfg.Freq = freq
	}
	if flags.Changed("power") {
		cfg.Power = power
	}
	if flags.Changed("spi") {
		cfg.SPI = spiPort
	}
	if logLevel != "" {
		globalConfig.LogLevel = logLevel
	}
	log, err = logger.New(globalConfig.LogLevel)
	return err
}

// openRadio returns an initialized radio for the loaded configuration.
func openRadio() (*SX127X.Radio, error) {
	cfg := globalConfig.SX127XConf
	log.Info("activating radio",
		zap.String("spi", cfg.SPI),
		zap.Float64("freq_mhz", cfg.Freq),
		zap.Int("power_dbm", cfg.Power))
	return SX127X.Discover(cfg, log)
}

// errorKind names the failure class reported to the user.
func errorKind(err error) string {
	switch {
	case errors.Is(err, SX127X.ErrIdentityMismatch):
		return "identity mismatch"
	case errors.Is(err, SX127X.ErrTxTimeout):
		return "tx timeout"
	case errors.Is(err, SX127X.ErrInvalidArgument):
		return "invalid argument"
	case errors.Is(err, SX127X.ErrClosed):
		return "closed"
	case SX127X.IsBusError(err):
		return "bus error"
	}
	return "error"
}

func main() {
	err := rootCmd.Execute()
	_ = log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %s: %v\n", errorKind(err), err)
		os.Exit(1)
	}
}
