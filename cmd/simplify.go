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
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/trailimage/trailmap/geo/export"
	"github.com/trailimage/trailmap/geo/gpx"
	"github.com/trailimage/trailmap/geo/simplify"
	"github.com/trailimage/trailmap/geo/summary"
	"github.com/trailimage/trailmap/metrics"
	"github.com/trailimage/trailmap/params"
)

var optSimplifyFormat string

// simplifyCmd represents the simplify command
var simplifyCmd = &cobra.Command{
	Use:   "simplify [file]",
	Short: "Simplify a GPX track to stdout",
	Long: `Parses, privacy filters and simplifies a GPX track without storing it.

Formats:

  geojson   LineString Feature with bbox (default)
  kml       KML document, altitudes in meters
  polyline  Google encoded polyline
  summary   Summary JSON

Examples:

  trailmap simplify --max-point-deviation-feet 2 track.gpx > track.geojson
  zcat track.gpx.gz | trailmap simplify --format polyline
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)

		config, err := loadConfig()
		if err != nil {
			return err
		}
		name := "-"
		if len(args) == 1 {
			name = args[0]
		}
		in, err := openInput(name)
		if err != nil {
			return err
		}
		defer in.Close()
		return runSimplify(cmd.OutOrStdout(), in, config, optSimplifyFormat)
	},
}

func init() {
	rootCmd.AddCommand(simplifyCmd)

	simplifyCmd.Flags().StringVar(&optSimplifyFormat, "format", "geojson", "Output format: geojson, kml, polyline or summary")
}

func runSimplify(w io.Writer, r io.Reader, config *params.Config, format string) error {
	e := config.Engine()
	tracks, err := gpx.Parse(r, gpx.Options{Engine: e, Privacy: config.PrivacyZone()})
	if err != nil {
		return err
	}
	raw := e.WithSpeeds(gpx.Flatten(tracks))
	simplified := simplify.NewSimplifier(config.MaxPointDeviationFeet, metrics.Registry).Simplify(raw)
	name := gpx.Name(tracks)

	switch format {
	case "geojson":
		b, err := json.Marshal(export.GeoJSON(name, simplified))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "kml":
		return export.KML(w, e, name, simplified)
	case "polyline":
		_, err := fmt.Fprintln(w, export.Polyline(simplified))
		return err
	case "summary":
		sum := summary.Of(e, raw, simplified)
		sum.Name = name
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	return fmt.Errorf("unknown format %q", format)
}
