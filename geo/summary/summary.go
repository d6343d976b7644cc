package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"
	"github.com/trailimage/trailmap/common"
	"github.com/trailimage/trailmap/geo/measure"
	"github.com/trailimage/trailmap/types/trackpoint"
)

// Summary describes a post's track. Distances and speeds are in the units
// named by Units.
type Summary struct {
	Name             string        `json:"name,omitempty"`
	Units            string        `json:"units"`
	Points           int           `json:"points"`
	SimplifiedPoints int           `json:"simplified_points"`
	Length           float64       `json:"length"`
	DurationHours    float64       `json:"duration_hours"`
	SpeedMean        float64       `json:"speed_mean"`
	SpeedMedian      float64       `json:"speed_median"`
	SpeedMax         float64       `json:"speed_max"`
	ElevationMin     int           `json:"elevation_min"`
	ElevationMax     int           `json:"elevation_max"`
	ElevationGain    int           `json:"elevation_gain"`
	ElevationLoss    int           `json:"elevation_loss"`
	Start            time.Time     `json:"start"`
	End              time.Time     `json:"end"`
	Bounds           [2][2]float64 `json:"bounds"`
	Place            string        `json:"place,omitempty"`

	units measure.Units
}

// Of summarizes raw, the full track, and simplified, what is drawn.
// Lengths come from the raw track.
func Of(e measure.Engine, raw, simplified trackpoint.Track) *Summary {
	s := &Summary{
		Units:            e.Units().String(),
		Points:           len(raw),
		SimplifiedPoints: len(simplified),
		Length:           common.DecimalToFixed(e.Length(raw), 2),
		Bounds:           raw.MapBounds(),
		units:            e.Units(),
	}
	if len(raw) == 0 {
		return s
	}

	first, last := raw[0], raw[len(raw)-1]
	// Untimed tracks carry zero times throughout.
	if len(raw) >= 2 && last.Time > first.Time {
		s.DurationHours = common.DecimalToFixed(measure.Duration(raw), 2)
		s.Start = time.UnixMilli(first.Time).UTC()
		s.End = time.UnixMilli(last.Time).UTC()
	}

	statsMustFloat := func(fn func() (float64, error), def float64) float64 {
		out, err := fn()
		if err != nil {
			return def
		}
		return out
	}

	speeds := []float64{}
	for _, tp := range e.WithSpeeds(raw)[1:] {
		if tp.Speed > 0 {
			speeds = append(speeds, tp.Speed)
		}
	}
	speedData := stats.Float64Data(speeds)
	s.SpeedMean = common.DecimalToFixed(statsMustFloat(speedData.Mean, 0), 2)
	s.SpeedMedian = common.DecimalToFixed(statsMustFloat(speedData.Median, 0), 2)
	s.SpeedMax = common.DecimalToFixed(statsMustFloat(speedData.Max, 0), 2)

	elevations := []float64{}
	for i, tp := range raw {
		if tp.Elevation == 0 {
			continue
		}
		elevations = append(elevations, float64(tp.Elevation))
		if i == 0 || raw[i-1].Elevation == 0 {
			continue
		}
		if delta := tp.Elevation - raw[i-1].Elevation; delta > 0 {
			s.ElevationGain += delta
		} else {
			s.ElevationLoss -= delta
		}
	}
	elevationData := stats.Float64Data(elevations)
	s.ElevationMin = int(statsMustFloat(elevationData.Min, 0))
	s.ElevationMax = int(statsMustFloat(elevationData.Max, 0))

	return s
}

// String is a one line label, eg. "Idaho, United States: 24.6 miles in
// 5.2 hours, 2,340 ft gain".
func (s *Summary) String() string {
	units := s.units
	if s.Units == measure.Metric.String() {
		units = measure.Metric
	}
	var b strings.Builder
	if s.Place != "" {
		b.WriteString(s.Place)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s %s", humanize.FtoaWithDigits(s.Length, 1), units.DistanceLabel())
	if s.DurationHours > 0 {
		fmt.Fprintf(&b, " in %s hours", humanize.FtoaWithDigits(s.DurationHours, 1))
	}
	if s.ElevationGain > 0 {
		fmt.Fprintf(&b, ", %s %s gain", humanize.Comma(int64(s.ElevationGain)), units.ElevationLabel())
	}
	return b.String()
}
