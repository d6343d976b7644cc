package api

import (
	"errors"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/trailimage/trailmap/conceptual"
	"github.com/trailimage/trailmap/geo/measure"
	"github.com/trailimage/trailmap/geo/simplify"
	"github.com/trailimage/trailmap/metrics"
	"github.com/trailimage/trailmap/params"
	"github.com/trailimage/trailmap/postdb/cache"
	"github.com/trailimage/trailmap/postdb/flat"
	"github.com/trailimage/trailmap/state"
	"github.com/trailimage/trailmap/types/trackpoint"
)

var ErrEmptyTrack = errors.New("track has no points")

// Site is the track service for every post. It owns the store; only one
// writable Site may be open per datadir.
type Site struct {
	Config *params.Config
	Engine measure.Engine
	Store  *state.Store
	Flat   *flat.Flat
	// Output is nil when output caching is disabled.
	Output *cache.Output

	tracks     *lru.Cache[conceptual.PostSlug, trackpoint.Track]
	simplifier *simplify.Simplifier
	logger     *slog.Logger
}

func NewSite(config *params.Config) (*Site, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	store, err := state.Open(config.DataDir, false)
	if err != nil {
		return nil, err
	}
	tracks, err := cache.NewTrackLRU(config.TrackLRUSize)
	if err != nil {
		store.Close()
		return nil, err
	}
	s := &Site{
		Config:     config,
		Engine:     config.Engine(),
		Store:      store,
		Flat:       flat.NewFlatWithRoot(config.DataDir),
		tracks:     tracks,
		simplifier: simplify.NewSimplifier(config.MaxPointDeviationFeet, metrics.Registry),
		logger:     slog.With("d", "site"),
	}
	if config.CacheOutput {
		s.Output = cache.NewOutput(config.CacheTTL)
	}
	s.logger.Info("Opened site",
		"datadir", config.DataDir,
		"units", s.Engine.Units(),
		"tolerance.feet", config.MaxPointDeviationFeet,
		"privacy", config.PrivacyZone().Enabled(),
		"cache", config.CacheOutput)
	return s, nil
}

func (s *Site) Close() error {
	if s.Output != nil {
		s.Output.Stop()
	}
	return s.Store.Close()
}

func (s *Site) Logger() *slog.Logger {
	return s.logger
}
