package bard

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leandrodaf/autobard/internal/notation"
	"github.com/leandrodaf/autobard/internal/parser/skysheet"
	"github.com/leandrodaf/autobard/internal/parser/smffile"
	"github.com/leandrodaf/autobard/internal/song"
	"github.com/leandrodaf/autobard/internal/transpose"
	"github.com/leandrodaf/autobard/sdk/contracts"
)

// SourceKind tells which parser produced a song.
type SourceKind string

const (
	SourceMIDI   SourceKind = "midi"
	SourceSheet  SourceKind = "sheet"
	SourceEvents SourceKind = "events"
)

// NoWindow marks a song that was not narrowed by auto-optimize.
const NoWindow = -1

// LoadedSong is a compiled song plus everything learned while preparing it.
type LoadedSong struct {
	Name     string
	Path     string
	Kind     SourceKind
	Tracks   []smffile.TrackInfo
	Track    int
	Compiled *song.Compiled
	// Report describes the source before any narrowing.
	Report transpose.Report
	Offset int
	Window int
	// Original and Kept count onsets before and after narrowing.
	Original int
	Kept     int
	// Below and Above count kept onsets the offset still leaves outside the
	// instrument; they are clamped when converted.
	Below int
	Above int
	// Events are the onsets that were compiled, before the offset.
	Events []contracts.NoteEvent
}

// Loader turns files and event streams into playable songs.
type Loader struct {
	logger     contracts.Logger
	converter  *notation.Converter
	keys       *notation.KeyMapper
	transposer *transpose.Transposer
}

// NewLoader builds a loader for an instrument at baseOctave.
func NewLoader(baseOctave int, logger contracts.Logger) *Loader {
	conv := notation.NewConverter(baseOctave)
	lo, hi := conv.Range()
	return &Loader{
		logger:     logger,
		converter:  conv,
		keys:       notation.NewKeyMapper(),
		transposer: transpose.New(lo, hi),
	}
}

// Converter returns the instrument's pitch converter.
func (l *Loader) Converter() *notation.Converter { return l.converter }

// Transposed returns the compiled onsets shifted by the song's offset.
func (l *Loader) Transposed(ls *LoadedSong) []contracts.NoteEvent {
	return l.transposer.Apply(ls.Events, ls.Offset)
}

// ReadFile parses path with the parser its name selects. track picks a single
// MIDI track; smffile.AllTracks merges them.
func (l *Loader) ReadFile(path string, track int) (*LoadedSong, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case smffile.IsMIDI(path):
		s, err := smffile.ReadFile(path, smffile.WithTrack(track))
		if err != nil {
			return nil, err
		}
		return &LoadedSong{
			Name:   strings.TrimSuffix(s.Name, filepath.Ext(s.Name)),
			Path:   path,
			Kind:   SourceMIDI,
			Tracks: s.Tracks,
			Track:  s.Track,
			Events: s.Events,
		}, nil
	case ext == ".json" || ext == ".txt" || ext == ".skysheet" || skysheet.IsSheet(path):
		sh, err := skysheet.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return &LoadedSong{Name: sh.Name, Path: path, Kind: SourceSheet, Track: smffile.AllTracks, Events: sh.Events}, nil
	}
	return nil, fmt.Errorf("%w: unsupported file type %q", contracts.ErrParse, ext)
}

// Load reads and prepares path.
func (l *Loader) Load(path string, track int, autoOptimize bool) (*LoadedSong, error) {
	ls, err := l.ReadFile(path, track)
	if err != nil {
		return nil, err
	}
	return l.prepare(ls, autoOptimize), nil
}

// Prepare analyzes, optionally narrows, transposes and compiles events.
func (l *Loader) Prepare(name string, events []contracts.NoteEvent, autoOptimize bool) *LoadedSong {
	return l.prepare(&LoadedSong{Name: name, Kind: SourceEvents, Track: smffile.AllTracks, Events: events}, autoOptimize)
}

func (l *Loader) prepare(ls *LoadedSong, autoOptimize bool) *LoadedSong {
	onsets := make([]contracts.NoteEvent, 0, len(ls.Events))
	for _, e := range ls.Events {
		if e.IsOnset {
			onsets = append(onsets, e)
		}
	}

	ls.Report = l.transposer.AnalyzeRange(onsets)
	ls.Original = len(onsets)
	ls.Window = NoWindow

	if autoOptimize && len(onsets) > 0 && !ls.Report.FitsInInstrument {
		start, _ := l.transposer.FindBestWindow(onsets)
		onsets = l.transposer.FilterToWindow(onsets, start)
		ls.Window = start
		l.logger.Info("song narrowed to best window",
			l.logger.Field().String("song", ls.Name),
			l.logger.Field().Int("window", start),
			l.logger.Field().Int("kept", len(onsets)),
			l.logger.Field().Int("original", ls.Original))
	}

	ls.Kept = len(onsets)
	ls.Offset = 0
	if len(onsets) > 0 {
		kept := l.transposer.AnalyzeRange(onsets)
		ls.Offset = l.transposer.CalculateOffset(kept.Min, kept.Max)
	}
	ls.Below, ls.Above = l.transposer.OutOfRange(onsets, ls.Offset)
	ls.Events = onsets
	ls.Compiled = song.Compile(onsets, ls.Offset, l.converter, l.keys, song.DefaultChordThreshold).WithName(ls.Name)

	l.logger.Info("song prepared",
		l.logger.Field().String("song", ls.Name),
		l.logger.Field().Int("min", ls.Report.Min),
		l.logger.Field().Int("max", ls.Report.Max),
		l.logger.Field().Int("offset", ls.Offset),
		l.logger.Field().Int("notes", ls.Compiled.Len()),
		l.logger.Field().Int("dropped", ls.Compiled.Dropped()))
	return ls
}
