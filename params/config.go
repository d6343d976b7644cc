package params

import (
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/trailimage/trailmap/geo/measure"
	"github.com/trailimage/trailmap/geo/privacy"
)

type Config struct {
	DataDir        string `mapstructure:"datadir"`
	ReverseGeocode bool   `mapstructure:"reverse_geocode"`

	MapConfig   `mapstructure:",squash"`
	CacheConfig `mapstructure:",squash"`
}

// MapConfig controls how tracks are measured and simplified. It is part of
// every rendered output cache key.
type MapConfig struct {
	// Units is "imperial" or "metric".
	Units string `mapstructure:"units"`
	// MaxPointDeviationFeet is the simplification tolerance. 0 disables
	// simplification.
	MaxPointDeviationFeet float64 `mapstructure:"max_point_deviation_feet"`
	// PrivacyCenter is [lon, lat]. Without it nothing is filtered.
	PrivacyCenter []float64 `mapstructure:"privacy_center"`
	// PrivacyRadius is in miles, or km when metric. 0 disables privacy filtering.
	PrivacyRadius float64 `mapstructure:"privacy_radius"`
}

type CacheConfig struct {
	CacheOutput  bool          `mapstructure:"cache_output"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	TrackLRUSize int           `mapstructure:"track_lru_size"`
}

var DefaultMapConfig = MapConfig{
	Units:                 measure.Imperial.String(),
	MaxPointDeviationFeet: 0.5,
	PrivacyRadius:         1,
}

var DefaultCacheConfig = CacheConfig{
	CacheOutput:  true,
	CacheTTL:     DefaultCacheTTL,
	TrackLRUSize: 128,
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:     DefaultDatadirRoot,
		MapConfig:   DefaultMapConfig,
		CacheConfig: DefaultCacheConfig,
	}
}

// DefaultTestConfig is DefaultConfig rooted at dir, without privacy
// filtering or reverse geocoding.
func DefaultTestConfig(dir string) *Config {
	c := DefaultConfig()
	c.DataDir = dir
	c.PrivacyRadius = 0
	c.ReverseGeocode = false
	return c
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("missing datadir")
	}
	if _, err := measure.ParseUnits(c.Units); err != nil {
		return err
	}
	if c.MaxPointDeviationFeet < 0 {
		return fmt.Errorf("negative max_point_deviation_feet %v", c.MaxPointDeviationFeet)
	}
	if len(c.PrivacyCenter) != 0 && len(c.PrivacyCenter) != 2 {
		return fmt.Errorf("privacy_center must be [lon, lat], got %v", c.PrivacyCenter)
	}
	if c.TrackLRUSize <= 0 {
		return fmt.Errorf("track_lru_size must be positive, got %d", c.TrackLRUSize)
	}
	return nil
}

// Engine is a measure engine in the configured units.
func (c MapConfig) Engine() measure.Engine {
	u, err := measure.ParseUnits(c.Units)
	if err != nil {
		u = measure.Imperial
	}
	return measure.New(u)
}

func (c MapConfig) PrivacyZone() privacy.Zone {
	if len(c.PrivacyCenter) != 2 {
		return privacy.Zone{}
	}
	return privacy.Zone{
		Center: orb.Point{c.PrivacyCenter[0], c.PrivacyCenter[1]},
		Radius: c.PrivacyRadius,
	}
}
