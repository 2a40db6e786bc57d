package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/leandrodaf/autobard/internal/parser/smffile"
	"github.com/leandrodaf/autobard/sdk/bard"
	"github.com/spf13/cobra"
)

var (
	analyzeTrack      int
	analyzeNoOptimize bool
)

func init() {
	analyzeCmd.Flags().IntVar(&analyzeTrack, "track", smffile.AllTracks, "analyze a single MIDI track")
	analyzeCmd.Flags().BoolVar(&analyzeNoOptimize, "no-optimize", false, "report without narrowing to the best window")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Reports how a song fits the instrument",
	Long: `analyze prints the pitch range of a song, the transposition that will be
applied, the window auto-optimize keeps and how many notes fall outside.`,
	Args: cobra.ExactArgs(1),
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
		ls, err := loader.Load(args[0], analyzeTrack, cfg.AutoOptimize && !analyzeNoOptimize)
		if err != nil {
			return err
		}
		printAnalysis(ls, loader)
		return nil
	},
}

func printAnalysis(ls *bard.LoadedSong, loader *bard.Loader) {
	lo, hi := loader.Converter().Range()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "song\t%s (%s)\n", ls.Name, ls.Kind)
	fmt.Fprintf(w, "instrument\t%d..%d\n", lo, hi)
	r := ls.Report
	fmt.Fprintf(w, "range\t%d..%d, %d semitones\n", r.Min, r.Max, r.Span)
	fmt.Fprintf(w, "fits\t%t\n", r.FitsInInstrument)
	if ls.Window != bard.NoWindow {
		fmt.Fprintf(w, "window\t%d..%d, kept %s of %s onsets\n",
			ls.Window, ls.Window+hi-lo,
			humanize.Comma(int64(ls.Kept)), humanize.Comma(int64(ls.Original)))
	}
	fmt.Fprintf(w, "transpose\t%+d semitones\n", ls.Offset)
	fmt.Fprintf(w, "clamped\t%d below, %d above\n", ls.Below, ls.Above)

	c := ls.Compiled
	fmt.Fprintf(w, "notes\t%s (%s chords, %d dropped)\n",
		humanize.Comma(int64(c.Len())), humanize.Comma(int64(c.Chords())), c.Dropped())
	length := time.Duration(c.TotalDuration() * float64(time.Second))
	fmt.Fprintf(w, "length\t%s\n", durafmt.Parse(length.Round(time.Second)).LimitFirstN(2).String())

	for _, t := range ls.Tracks {
		marker := ""
		if ls.Track == t.Index {
			marker = " *"
		}
		fmt.Fprintf(w, "track %d\t%s, %s notes%s\n", t.Index, t.Name, humanize.Comma(int64(t.NoteCount)), marker)
	}
}
