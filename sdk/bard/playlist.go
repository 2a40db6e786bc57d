package bard

import (
	"slices"
	"sync"

	"github.com/leandrodaf/autobard/sdk/contracts"
)

// Playlist is an ordered queue of files. It advances when a song ends and
// skips entries that fail to load.
type Playlist struct {
	logger contracts.Logger
	load   func(path string) (*LoadedSong, error)

	mu    sync.Mutex
	paths []string
	index int
}

// NewPlaylist creates an empty playlist that loads entries with load.
func NewPlaylist(load func(path string) (*LoadedSong, error), logger contracts.Logger) *Playlist {
	return &Playlist{load: load, logger: logger, index: -1}
}

// Set replaces the queue. The cursor sits before the first entry.
func (pl *Playlist) Set(paths []string) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.paths = slices.Clone(paths)
	pl.index = -1
}

// Add appends paths to the queue.
func (pl *Playlist) Add(paths ...string) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.paths = append(pl.paths, paths...)
}

// Paths returns a copy of the queue.
func (pl *Playlist) Paths() []string {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return slices.Clone(pl.paths)
}

// Len is the number of queued entries.
func (pl *Playlist) Len() int {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return len(pl.paths)
}

// Index is the position of the loaded entry, or -1.
func (pl *Playlist) Index() int {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.index
}

// Clear empties the queue.
func (pl *Playlist) Clear() {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.paths = nil
	pl.index = -1
}

// Advance loads the entries after the cursor until one succeeds. The cursor
// does not move when none does.
func (pl *Playlist) Advance() (*LoadedSong, bool) {
	return pl.step(1)
}

// Previous loads the entries before the cursor until one succeeds.
func (pl *Playlist) Previous() (*LoadedSong, bool) {
	return pl.step(-1)
}

func (pl *Playlist) step(dir int) (*LoadedSong, bool) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	for i := pl.index + dir; i >= 0 && i < len(pl.paths); i += dir {
		path := pl.paths[i]
		ls, err := pl.load(path)
		if err != nil {
			pl.logger.Warn("skipping playlist entry",
				pl.logger.Field().String("path", path),
				pl.logger.Field().Error("error", err))
			continue
		}
		if ls.Compiled.Len() == 0 {
			pl.logger.Warn("skipping empty playlist entry", pl.logger.Field().String("path", path))
			continue
		}
		pl.index = i
		return ls, true
	}
	return nil, false
}
