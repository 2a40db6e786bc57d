// Package api exposes playback control over HTTP for overlays and stream decks.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"
	"github.com/leandrodaf/autobard/internal/config"
	"github.com/leandrodaf/autobard/internal/scheduler"
	"github.com/leandrodaf/autobard/sdk/bard"
	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/rs/cors"
)

const shutdownTimeout = 3 * time.Second

// Controller is the part of bard.Player the API drives.
type Controller interface {
	Start() error
	Pause()
	Stop() error
	ToggleLoop() bool
	SetLoopA() int
	SetLoopB() int
	ClearLoopAB()
	Seek(index int) int
	SeekPercent(percent float64) int
	Load(path string) (*bard.LoadedSong, error)
	Current() *bard.LoadedSong
	Snapshot() scheduler.Cursor
	Duration() float64
	Config() contracts.PlaybackConfig
	SetConfig(cfg contracts.PlaybackConfig)
	NextSong() (*bard.LoadedSong, error)
	PrevSong() (*bard.LoadedSong, error)
	ClearPlaylist()
	Playlist() *bard.Playlist
}

// Server routes HTTP requests to a Controller.
type Server struct {
	player  Controller
	store   *config.Store
	logger  contracts.Logger
	router  *mux.Router
	origins []string
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins lists the browser origins allowed to call the API. "*"
// allows every origin. With no origins only non-browser clients get through.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = append(s.origins, origins...)
	}
}

// NewServer builds the router. store may be nil, in which case config
// changes are not persisted.
func NewServer(player Controller, store *config.Store, logger contracts.Logger, opts ...Option) *Server {
	s := &Server{player: player, store: store, logger: logger, router: mux.NewRouter().StrictSlash(true)}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests, s.guard)
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/start", s.handleStart).Methods(http.MethodPost)
	s.router.HandleFunc("/pause", s.handlePause).Methods(http.MethodPost)
	s.router.HandleFunc("/stop", s.handleStop).Methods(http.MethodPost)
	s.router.HandleFunc("/loop", s.handleLoop).Methods(http.MethodPost)
	s.router.HandleFunc("/loop/a", s.handleLoopA).Methods(http.MethodPost)
	s.router.HandleFunc("/loop/b", s.handleLoopB).Methods(http.MethodPost)
	s.router.HandleFunc("/loop/ab", s.handleClearLoop).Methods(http.MethodDelete)
	s.router.HandleFunc("/seek", s.handleSeek).Methods(http.MethodPost)
	s.router.HandleFunc("/load", s.handleLoad).Methods(http.MethodPost)
	s.router.HandleFunc("/config", s.handleGetConfig).Methods(http.MethodGet)
	s.router.HandleFunc("/config", s.handlePutConfig).Methods(http.MethodPut)
	s.router.HandleFunc("/playlist", s.handlePlaylist).Methods(http.MethodGet)
	s.router.HandleFunc("/playlist", s.handleClearPlaylist).Methods(http.MethodDelete)
	s.router.HandleFunc("/playlist/next", s.handleNextSong).Methods(http.MethodPost)
	s.router.HandleFunc("/playlist/prev", s.handlePrevSong).Methods(http.MethodPost)
}

// Handler is the router wrapped with CORS for the configured origins.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowOriginFunc: s.originAllowed,
		AllowedMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:  []string{"Content-Type"},
	}).Handler(s.router)
}

func (s *Server) originAllowed(origin string) bool {
	return slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin)
}

// guard refuses state-changing requests from origins outside the allow list
// and requests that are not application/json, including body-less POSTs.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if origin := r.Header.Get("Origin"); origin != "" && !s.originAllowed(origin) {
			s.logger.Warn("refused cross-origin request",
				s.logger.Field().String("origin", origin),
				s.logger.Field().String("path", r.URL.Path))
			s.writeError(w, fmt.Errorf("%w: origin %q", errForbiddenOrigin, origin))
			return
		}
		if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
			s.writeError(w, fmt.Errorf("%w: want application/json", errMediaType))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("control API listening", s.logger.Field().String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			s.logger.Field().String("method", r.Method),
			s.logger.Field().String("path", r.URL.Path),
			s.logger.Field().Duration("took", time.Since(start)))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("writing response failed", s.logger.Field().Error("error", err))
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, errForbiddenOrigin):
		status = http.StatusForbidden
	case errors.Is(err, errMediaType):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, contracts.ErrParse):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrNoSong), errors.Is(err, contracts.ErrSessionStillRunning),
		errors.Is(err, bard.ErrPlaylistEnd):
		status = http.StatusConflict
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}
