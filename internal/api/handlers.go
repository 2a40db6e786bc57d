package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/leandrodaf/autobard/internal/config"
	"github.com/leandrodaf/autobard/internal/scheduler"
	"github.com/leandrodaf/autobard/sdk/bard"
)

var (
	errBadRequest      = errors.New("bad request")
	errForbiddenOrigin = errors.New("origin not allowed")
	errMediaType       = errors.New("unsupported media type")
)

type statusResponse struct {
	scheduler.Cursor
	Song     string  `json:"song"`
	Duration float64 `json:"duration"`
}

type songResponse struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	Notes    int     `json:"notes"`
	Chords   int     `json:"chords"`
	Dropped  int     `json:"dropped"`
	Offset   int     `json:"offset"`
	Window   int     `json:"window"`
	Kept     int     `json:"kept"`
	Original int     `json:"original"`
	Duration float64 `json:"duration"`
}

func newSongResponse(ls *bard.LoadedSong) songResponse {
	return songResponse{
		Name:     ls.Name,
		Kind:     string(ls.Kind),
		Notes:    ls.Compiled.Len(),
		Chords:   ls.Compiled.Chords(),
		Dropped:  ls.Compiled.Dropped(),
		Offset:   ls.Offset,
		Window:   ls.Window,
		Kept:     ls.Kept,
		Original: ls.Original,
		Duration: ls.Compiled.TotalDuration(),
	}
}

type seekRequest struct {
	Index   *int     `json:"index"`
	Percent *float64 `json:"percent"`
}

type loadRequest struct {
	Path string `json:"path"`
}

type indexResponse struct {
	Index int `json:"index"`
}

type loopResponse struct {
	Loop bool `json:"loop"`
}

type playlistResponse struct {
	Paths []string `json:"paths"`
	Index int      `json:"index"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) status() statusResponse {
	resp := statusResponse{Cursor: s.player.Snapshot(), Duration: s.player.Duration()}
	if ls := s.player.Current(); ls != nil {
		resp.Song = ls.Name
	}
	return resp
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleStart(w http.ResponseWriter, _ *http.Request) {
	if err := s.player.Start(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.player.Pause()
	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	if err := s.player.Stop(); err != nil {
		s.logger.Warn("stop reported errors", s.logger.Field().Error("error", err))
	}
	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleLoop(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, loopResponse{Loop: s.player.ToggleLoop()})
}

func (s *Server) handleLoopA(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, indexResponse{Index: s.player.SetLoopA()})
}

func (s *Server) handleLoopB(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, indexResponse{Index: s.player.SetLoopB()})
}

func (s *Server) handleClearLoop(w http.ResponseWriter, _ *http.Request) {
	s.player.ClearLoopAB()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	switch {
	case req.Index != nil:
		s.writeJSON(w, http.StatusOK, indexResponse{Index: s.player.Seek(*req.Index)})
	case req.Percent != nil:
		s.writeJSON(w, http.StatusOK, indexResponse{Index: s.player.SeekPercent(*req.Percent)})
	default:
		s.writeError(w, fmt.Errorf("%w: index or percent required", errBadRequest))
	}
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Path == "" {
		s.writeError(w, fmt.Errorf("%w: path required", errBadRequest))
		return
	}
	ls, err := s.player.Load(req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.store != nil {
		s.store.Update(func(c *config.AppConfig) { c.AddRecentFile(req.Path) })
	}
	s.writeJSON(w, http.StatusOK, newSongResponse(ls))
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.player.Config())
}

// handlePutConfig merges the body over the current config, so clients may
// send only the fields they change.
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.player.Config()
	if err := decode(r, &cfg); err != nil {
		s.writeError(w, err)
		return
	}
	s.player.SetConfig(cfg)
	applied := s.player.Config()
	if s.store != nil {
		s.store.Update(func(c *config.AppConfig) { c.SetPlayback(applied) })
	}
	s.writeJSON(w, http.StatusOK, applied)
}

func (s *Server) handlePlaylist(w http.ResponseWriter, _ *http.Request) {
	pl := s.player.Playlist()
	paths := pl.Paths()
	if paths == nil {
		paths = []string{}
	}
	s.writeJSON(w, http.StatusOK, playlistResponse{Paths: paths, Index: pl.Index()})
}

func (s *Server) handleClearPlaylist(w http.ResponseWriter, _ *http.Request) {
	s.player.ClearPlaylist()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNextSong(w http.ResponseWriter, _ *http.Request) {
	s.skip(w, s.player.NextSong)
}

func (s *Server) handlePrevSong(w http.ResponseWriter, _ *http.Request) {
	s.skip(w, s.player.PrevSong)
}

func (s *Server) skip(w http.ResponseWriter, step func() (*bard.LoadedSong, error)) {
	ls, err := step()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSongResponse(ls))
}
