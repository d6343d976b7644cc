// Package privacy drops track points near a protected location.
package privacy

import (
	"github.com/paulmach/orb"
	"github.com/trailimage/trailmap/geo/measure"
	"github.com/trailimage/trailmap/types/trackpoint"
)

// Zone is a circle, radius in engine distance units, whose points are
// removed from every track. A zero radius protects nothing.
type Zone struct {
	Center orb.Point
	Radius float64
}

func (z Zone) Enabled() bool {
	return z.Radius > 0
}

// Contains reports whether tp is strictly within the zone.
func (z Zone) Contains(e measure.Engine, tp trackpoint.TrackPoint) bool {
	return z.Enabled() && e.Distance(tp, trackpoint.FromPoint(z.Center)) < z.Radius
}

// Filter returns the points of track outside the zone.
func Filter(e measure.Engine, track trackpoint.Track, z Zone) trackpoint.Track {
	if !z.Enabled() {
		return track
	}
	out := make(trackpoint.Track, 0, len(track))
	for _, tp := range track {
		if !z.Contains(e, tp) {
			out = append(out, tp)
		}
	}
	return out
}
