package config

import (
	"slices"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/leandrodaf/autobard/sdk/contracts"
)

// SaveDelay is how long the store waits for more changes before writing.
const SaveDelay = 500 * time.Millisecond

// Store is a concurrency-safe AppConfig that persists itself after changes
// settle.
type Store struct {
	path     string
	logger   contracts.Logger
	debounce func(func())

	mu  sync.Mutex
	cfg AppConfig
}

// Open loads path into a new store. A corrupt file is logged and replaced by
// the defaults on the next save.
func Open(path string, logger contracts.Logger) *Store {
	cfg, err := Load(path)
	if err != nil {
		logger.Warn("config unreadable; using defaults",
			logger.Field().String("path", path),
			logger.Field().Error("error", err))
	}
	return &Store{
		path:     path,
		logger:   logger,
		debounce: debounce.New(SaveDelay),
		cfg:      cfg,
	}
}

// Path is the file the store writes to.
func (s *Store) Path() string { return s.path }

// Get returns a copy of the current settings.
func (s *Store) Get() AppConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.cfg
	cfg.RecentFiles = slices.Clone(s.cfg.RecentFiles)
	cfg.AllowedOrigins = slices.Clone(s.cfg.AllowedOrigins)
	return cfg
}

// Update applies fn under the lock and schedules a save.
func (s *Store) Update(fn func(*AppConfig)) AppConfig {
	s.mu.Lock()
	fn(&s.cfg)
	cfg := s.cfg
	cfg.RecentFiles = slices.Clone(s.cfg.RecentFiles)
	cfg.AllowedOrigins = slices.Clone(s.cfg.AllowedOrigins)
	s.mu.Unlock()

	s.debounce(func() {
		if err := s.Flush(); err != nil {
			s.logger.Error("saving config failed", s.logger.Field().Error("error", err))
		}
	})
	return cfg
}

// Flush writes the settings now.
func (s *Store) Flush() error {
	cfg := s.Get()
	if err := Save(s.path, cfg); err != nil {
		return err
	}
	s.logger.Debug("config saved", s.logger.Field().String("path", s.path))
	return nil
}

// Close cancels a pending save and writes the settings now.
func (s *Store) Close() error {
	s.debounce(func() {})
	return s.Flush()
}
