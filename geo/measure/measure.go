// Package measure computes great-circle distances, durations and speeds
// over tracks.
//
// All distances come out in the engine's unit system: miles for Imperial,
// kilometers for Metric. Elevations converted by the engine are feet or meters.
package measure

import (
	"math"

	"github.com/trailimage/trailmap/types/trackpoint"
)

const (
	RadiusMiles  = 3958.756
	RadiusKm     = 6371.0
	FeetPerMeter = 3.28084

	msPerHour = 60 * 60 * 1000
)

// Engine is an immutable binding of a unit system to its earth radius and
// elevation conversion. The zero value is an Imperial engine.
type Engine struct {
	units               Units
	earthRadius         float64
	elevationConversion float64
}

func New(units Units) Engine {
	return Engine{}.WithUnits(units)
}

// WithUnits returns a copy of e measuring in units. Earth radius and
// elevation conversion always switch together.
func (e Engine) WithUnits(units Units) Engine {
	if units == Metric {
		return Engine{units: Metric, earthRadius: RadiusKm, elevationConversion: 1}
	}
	return Engine{units: Imperial, earthRadius: RadiusMiles, elevationConversion: FeetPerMeter}
}

func (e Engine) Units() Units {
	return e.units
}

func (e Engine) EarthRadius() float64 {
	if e.earthRadius == 0 {
		return RadiusMiles
	}
	return e.earthRadius
}

// ElevationConversion is the factor taking meters to the engine's
// elevation unit.
func (e Engine) ElevationConversion() float64 {
	if e.elevationConversion == 0 {
		return FeetPerMeter
	}
	return e.elevationConversion
}

// Elevation converts meters to whole elevation units.
func (e Engine) Elevation(meters float64) int {
	return int(math.Round(meters * e.ElevationConversion()))
}

// Meters converts whole elevation units back to meters.
func (e Engine) Meters(elevation int) float64 {
	return float64(elevation) / e.ElevationConversion()
}

func ToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// SameLocation compares latitude and longitude exactly, no tolerance.
func SameLocation(p1, p2 trackpoint.TrackPoint) bool {
	return p1.Lat == p2.Lat && p1.Lon == p2.Lon
}

// Distance is the Haversine great-circle distance between two points.
func (e Engine) Distance(p1, p2 trackpoint.TrackPoint) float64 {
	if SameLocation(p1, p2) {
		return 0
	}
	φ1 := ToRadians(p1.Lat)
	φ2 := ToRadians(p2.Lat)
	Δφ := ToRadians(p2.Lat - p1.Lat)
	Δλ := ToRadians(p2.Lon - p1.Lon)

	a := math.Pow(math.Sin(Δφ/2), 2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Pow(math.Sin(Δλ/2), 2)
	// Rounding can push a a hair outside [0, 1] for near antipodal points.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return e.EarthRadius() * c
}

// PointToSegmentDistance is the squared planar distance, in degrees², from
// p to the closest point of segment ab. It is unit independent.
func PointToSegmentDistance(p, a, b trackpoint.TrackPoint) float64 {
	x, y := a.Lon, a.Lat
	dx := b.Lon - x
	dy := b.Lat - y

	if dx != 0 || dy != 0 {
		t := ((p.Lon-x)*dx + (p.Lat-y)*dy) / (dx*dx + dy*dy)
		if t > 1 {
			x, y = b.Lon, b.Lat
		} else if t > 0 {
			x += dx * t
			y += dy * t
		}
	}

	dx = p.Lon - x
	dy = p.Lat - y

	return dx*dx + dy*dy
}

// Length is the summed distance between consecutive points.
func (e Engine) Length(track trackpoint.Track) float64 {
	d := 0.0
	for i := 1; i < len(track); i++ {
		d += e.Distance(track[i-1], track[i])
	}
	return d
}

// Duration is the hours between the first and last point.
func Duration(track trackpoint.Track) float64 {
	if len(track) < 2 {
		return 0
	}
	return float64(track[len(track)-1].Time-track[0].Time) / msPerHour
}

// Speed between two points in distance units per hour. 0 when either the
// elapsed time or the distance is 0.
func (e Engine) Speed(p1, p2 trackpoint.TrackPoint) float64 {
	t := math.Abs(float64(p1.Time - p2.Time))
	d := e.Distance(p1, p2)
	if t > 0 && d > 0 {
		return d / (t / msPerHour)
	}
	return 0
}

// WithSpeeds returns a copy of track with each point's speed set from its
// predecessor. The first point's speed is 0.
func (e Engine) WithSpeeds(track trackpoint.Track) trackpoint.Track {
	out := track.Clone()
	for i := range out {
		if i == 0 {
			out[i].Speed = 0
			continue
		}
		out[i].Speed = e.Speed(out[i-1], out[i])
	}
	return out
}
