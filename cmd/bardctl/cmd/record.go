package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/leandrodaf/autobard/internal/capture"
	"github.com/leandrodaf/autobard/internal/parser/smffile"
	"github.com/leandrodaf/autobard/sdk/bard"
	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/spf13/cobra"
)

var (
	recordDevice   int
	recordOut      string
	recordDuration time.Duration
)

func init() {
	flags := recordCmd.Flags()
	flags.IntVar(&recordDevice, "device", 0, "MIDI input index, see the devices command")
	flags.StringVar(&recordOut, "out", "take.mid", "file the take is written to")
	flags.DurationVar(&recordDuration, "duration", 0, "stop after this long (default: until Ctrl+C)")
	rootCmd.AddCommand(recordCmd)
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Records a MIDI keyboard performance to a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		capturer, err := bard.NewCapturer(
			contracts.WithLogger(log),
			contracts.WithCaptureFilter(contracts.CaptureFilter{
				Commands: []contracts.CaptureCommand{contracts.CaptureNoteOn, contracts.CaptureNoteOff},
			}),
		)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if recordDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, recordDuration)
			defer cancel()
		}

		rec := capture.NewRecorder(capturer, log)
		var notes int
		rec.OnEvent = func(ev contracts.CaptureEvent) {
			if ev.IsOnset() {
				notes++
				fmt.Printf("\r%d notes", notes)
			}
		}
		fmt.Println("recording, press Ctrl+C to finish")
		events, err := rec.Record(ctx, recordDevice)
		fmt.Println()
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if len(events) == 0 {
			return errors.New("nothing was played")
		}

		name := strings.TrimSuffix(filepath.Base(recordOut), filepath.Ext(recordOut))
		if err := smffile.WriteFile(recordOut, name, events); err != nil {
			return err
		}
		fmt.Printf("wrote %d notes to %s\n", len(events), recordOut)
		return nil
	},
}
