package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leandrodaf/autobard/internal/config"
	"github.com/leandrodaf/autobard/internal/logger"
	"github.com/leandrodaf/autobard/sdk/bard"
	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFile    string
	sinkKind   string
	serialPort string
	serialBaud int
)

var rootCmd = &cobra.Command{
	Use:   "bardctl",
	Short: "Plays MIDI files and sky sheets on in-game instruments",
	Long: `bardctl converts MIDI files and community sky sheets into keystrokes for
the 21-key in-game instrument, with tempo, humanization and A-B looping.`,
	SilenceUsage: true,
}

// Execute runs the command line.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "settings file (default ~/.config/autobard/config.json)")
	flags.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	flags.StringVar(&logFile, "log-file", "", "write JSON logs to this file instead of stderr")
	flags.StringVar(&sinkKind, "sink", "", "key sink: auto, serial or dry-run (default from settings)")
	flags.StringVar(&serialPort, "serial-port", "", "serial device of the keyboard emulator")
	flags.IntVar(&serialBaud, "baud", 0, "serial baud rate (default from settings)")
}

func parseLevel(s string) (contracts.LogLevel, error) {
	switch strings.ToLower(s) {
	case "debug":
		return contracts.DebugLevel, nil
	case "info", "":
		return contracts.InfoLevel, nil
	case "warn", "warning":
		return contracts.WarnLevel, nil
	case "error":
		return contracts.ErrorLevel, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func newLogger() (contracts.Logger, error) {
	level, err := parseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	log := logger.NewZapLogger()
	log.SetLevel(level)
	if logFile != "" {
		log.SetDestination(contracts.FileLog, logFile)
	}
	return log, nil
}

func openStore(log contracts.Logger) (*config.Store, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return config.Open(path, log), nil
}

// playerOptions merges settings and flags, flags winning.
func playerOptions(log contracts.Logger, cfg config.AppConfig, pb contracts.PlaybackConfig) []contracts.Option {
	kind := cfg.Sink
	if sinkKind != "" {
		kind = contracts.SinkKind(sinkKind)
	}
	port, baud := cfg.SerialPort, cfg.SerialBaud
	if serialPort != "" {
		port = serialPort
	}
	if serialBaud > 0 {
		baud = serialBaud
	}

	opts := []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithPlayback(pb),
		contracts.WithBaseOctave(cfg.BaseOctave),
		contracts.WithSinkKind(kind),
	}
	if kind == contracts.SinkSerial {
		opts = append(opts, contracts.WithSerial(contracts.SerialConfig{Port: port, BaudRate: baud}))
	}
	return opts
}

// newPlayer builds a player and falls back to the dry-run sink where the OS
// has no key injection backend.
func newPlayer(log contracts.Logger, cfg config.AppConfig, pb contracts.PlaybackConfig) (*bard.Player, error) {
	opts := playerOptions(log, cfg, pb)
	player, err := bard.NewPlayer(opts...)
	if errors.Is(err, bard.ErrUnsupportedOS) {
		log.Warn("no key injection on this OS; using dry-run sink", log.Field().Error("error", err))
		player, err = bard.NewPlayer(append(opts, contracts.WithSinkKind(contracts.SinkDryRun))...)
	}
	return player, err
}
