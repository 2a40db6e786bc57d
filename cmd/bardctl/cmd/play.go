package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/leandrodaf/autobard/internal/config"
	"github.com/leandrodaf/autobard/internal/parser/smffile"
	"github.com/leandrodaf/autobard/internal/tui"
	"github.com/leandrodaf/autobard/sdk/bard"
	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/spf13/cobra"
)

var (
	playSpeed      float64
	playLoop       bool
	playCountdown  int
	playTrack      int
	playTUI        bool
	playNoOptimize bool
)

func init() {
	flags := playCmd.Flags()
	flags.Float64Var(&playSpeed, "speed", 0, "playback speed 0.5-2 (default from settings)")
	flags.BoolVar(&playLoop, "loop", false, "repeat the song until stopped")
	flags.IntVar(&playCountdown, "countdown", -1, "seconds to wait before the first note (default from settings)")
	flags.IntVar(&playTrack, "track", smffile.AllTracks, "play a single MIDI track instead of all tracks merged")
	flags.BoolVar(&playTUI, "tui", false, "show the interactive now-playing view")
	flags.BoolVar(&playNoOptimize, "no-optimize", false, "keep notes outside the best instrument window")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <file>...",
	Short: "Plays one song, or several as a playlist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return play(cmd.Context(), args)
	},
}

func playbackFromFlags(cfg config.AppConfig) contracts.PlaybackConfig {
	pb := cfg.Playback()
	if playSpeed > 0 {
		pb.PlaybackSpeed = playSpeed
	}
	if playLoop {
		pb.LoopMode = true
	}
	if playCountdown >= 0 {
		pb.CountdownSeconds = playCountdown
	}
	if playNoOptimize {
		pb.AutoOptimize = false
	}
	return pb
}

func play(ctx context.Context, files []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	store, err := openStore(log)
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := store.Get()
	player, err := newPlayer(log, cfg, playbackFromFlags(cfg))
	if err != nil {
		return err
	}
	defer player.Close()

	var ls *bard.LoadedSong
	if len(files) == 1 {
		ls, err = player.LoadTrack(files[0], playTrack)
	} else {
		ls, err = player.Queue(files...)
	}
	if err != nil {
		return err
	}
	store.Update(func(c *config.AppConfig) {
		for _, f := range files {
			c.AddRecentFile(f)
		}
	})
	fmt.Printf("%s: %d notes, transpose %+d\n", ls.Name, ls.Compiled.Len(), ls.Offset)

	events, cancel := player.Subscribe(256)
	defer cancel()

	if err := player.Start(); err != nil {
		return err
	}

	if playTUI {
		_, err := tea.NewProgram(tui.New(player, events)).Run()
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return waitForEnd(ctx, player, events)
}

// statePoll bounds how long a dropped READY event can delay exit.
var statePoll = 250 * time.Millisecond

type playback interface {
	State() contracts.State
	Stop() error
}

// waitForEnd prints progress until playback returns to READY or ctx ends.
func waitForEnd(ctx context.Context, player playback, events <-chan contracts.Event) error {
	defer fmt.Println()

	ticker := time.NewTicker(statePoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return player.Stop()
		case <-ticker.C:
			if player.State() == contracts.StateReady {
				return nil
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Kind {
			case contracts.EventCountdown:
				if ev.Remaining > 0 {
					fmt.Printf("\rstarting in %d...", ev.Remaining)
				}
			case contracts.EventProgress:
				fmt.Printf("\r%d/%d notes   ", ev.Current, ev.Total)
			case contracts.EventState:
				if ev.State == contracts.StateReady {
					return nil
				}
			}
		}
	}
}
