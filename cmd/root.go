/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trailimage/trailmap/params"
)

var optConfigFile string
var optVerbosity int

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trailmap",
	Short: "Tracks and photo maps for trail posts",
	Long: `trailmap imports GPX tracks and photo locations for posts, simplifies
and summarizes them, and serves them to map clients.

Configuration is read from trailmap.yaml (in the datadir or the working
directory), then TRAILMAP_* environment variables, then flags.

Examples:

  trailmap import kaniksu-loop track.gpx
  trailmap import --photos kaniksu-loop photoset.json
  trailmap simplify --format polyline < track.gpx
  TRAILMAP_TOKEN=secret trailmap webd --address :3000
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configFlags maps config keys to their flag names.
var configFlags = map[string]string{
	"datadir":                  "datadir",
	"units":                    "units",
	"max_point_deviation_feet": "max-point-deviation-feet",
	"privacy_center":           "privacy-center",
	"privacy_radius":           "privacy-radius",
	"cache_output":             "cache-output",
	"cache_ttl":                "cache-ttl",
	"track_lru_size":           "track-lru-size",
	"reverse_geocode":          "reverse-geocode",
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := params.DefaultConfig()

	pFlags := rootCmd.PersistentFlags()
	pFlags.StringVar(&optConfigFile, "config", "", "Config file (default is trailmap.yaml in the datadir or working directory)")
	pFlags.IntVar(&optVerbosity, "verbosity", int(slog.LevelInfo), "Log level (-4 debug, 0 info, 4 warn, 8 error)")

	pFlags.String("datadir", defaults.DataDir, "Data directory")
	pFlags.String("units", defaults.Units, "Units: imperial or metric")
	pFlags.Float64("max-point-deviation-feet", defaults.MaxPointDeviationFeet, "Simplification tolerance in feet, 0 disables simplification")
	pFlags.String("privacy-center", "", "Privacy zone center as lon,lat")
	pFlags.Float64("privacy-radius", defaults.PrivacyRadius, "Privacy zone radius in miles (km when metric)")
	pFlags.Bool("cache-output", defaults.CacheOutput, "Cache rendered output")
	pFlags.Duration("cache-ttl", defaults.CacheTTL, "Rendered output cache TTL")
	pFlags.Int("track-lru-size", defaults.TrackLRUSize, "Number of parsed tracks kept in memory")
	pFlags.Bool("reverse-geocode", defaults.ReverseGeocode, "Label tracks with the country and province they start in")

	bindFlags(pFlags, configFlags)
}

func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if optConfigFile != "" {
		viper.SetConfigFile(optConfigFile)
	} else {
		viper.AddConfigPath(params.DefaultDatadirRoot)
		viper.AddConfigPath(".")
		viper.SetConfigName("trailmap")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("TRAILMAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("Failed to read config", "error", err)
		}
		return
	}
	slog.Debug("Using config file", "file", viper.ConfigFileUsed())
}

// loadConfig is the site config from file, env and flags, over the defaults.
func loadConfig() (*params.Config, error) {
	config := params.DefaultConfig()
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return config, nil
}

func setDefaultSlog(cmd *cobra.Command, args []string) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(optVerbosity),
	})))
}
