package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leandrodaf/autobard/internal/parser/smffile"
	"github.com/leandrodaf/autobard/sdk/bard"
	"github.com/spf13/cobra"
)

var (
	exportTrack      int
	exportTransposed bool
)

func init() {
	exportCmd.Flags().IntVar(&exportTrack, "track", smffile.AllTracks, "export a single MIDI track")
	exportCmd.Flags().BoolVar(&exportTransposed, "transposed", false, "write the notes as they will be played, narrowed and transposed")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <song> <out.mid>",
	Short: "Converts a sky sheet or MIDI file into a standard MIDI file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		loader := bard.NewLoader(cfg.BaseOctave, log)
		ls, err := loader.ReadFile(args[0], exportTrack)
		if err != nil {
			return err
		}
		events := ls.Events
		if exportTransposed {
			ls = loader.Prepare(ls.Name, ls.Events, cfg.AutoOptimize)
			events = loader.Transposed(ls)
		}

		out := args[1]
		name := ls.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
		}
		if err := smffile.WriteFile(out, name, events); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	},
}
