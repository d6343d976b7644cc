// Package simplify reduces tracks with an iterative Douglas-Peucker pass.
package simplify

import (
	"time"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/trailimage/trailmap/geo/measure"
	"github.com/trailimage/trailmap/types/trackpoint"
)

const (
	feetPerMile = 5280
	// equatorFeet is feet per radian of arc, used as a flat degree
	// conversion regardless of latitude.
	equatorFeet = feetPerMile * measure.RadiusMiles
)

// Tolerance converts a maximum point deviation in feet to the threshold
// compared against squared segment distances.
func Tolerance(feet float64) float64 {
	return feet / equatorFeet
}

// Simplify returns the subsequence of track that survives Douglas-Peucker
// at toleranceFeet. Endpoints are always kept. A tolerance <= 0, or a track
// too short to simplify, returns track itself.
func Simplify(track trackpoint.Track, toleranceFeet float64) trackpoint.Track {
	if toleranceFeet <= 0 || len(track) < 3 {
		return track
	}
	tolerance := Tolerance(toleranceFeet)
	last := len(track) - 1

	keep := make([]bool, len(track))
	keep[0], keep[last] = true, true

	stack := [][2]int{{0, last}}
	for len(stack) > 0 {
		span := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		first, last := span[0], span[1]

		maxDistance := 0.0
		index := 0
		for i := first + 1; i < last; i++ {
			d := measure.PointToSegmentDistance(track[i], track[first], track[last])
			if d > maxDistance {
				index = i
				maxDistance = d
			}
		}
		// Squared degrees against a linear threshold.
		if maxDistance > tolerance {
			keep[index] = true
			stack = append(stack, [2]int{first, index}, [2]int{index, last})
		}
	}

	out := make(trackpoint.Track, 0, len(track))
	for i, k := range keep {
		if k {
			out = append(out, track[i])
		}
	}
	return out
}

// Simplifier simplifies at a fixed tolerance and records point counts and
// timing in a metrics registry.
type Simplifier struct {
	ToleranceFeet float64

	timer     metrics.Timer
	pointsIn  metrics.Counter
	pointsOut metrics.Counter
}

// NewSimplifier registers its metrics in r, or the default registry when r
// is nil.
func NewSimplifier(toleranceFeet float64, r metrics.Registry) *Simplifier {
	return &Simplifier{
		ToleranceFeet: toleranceFeet,
		timer:         metrics.GetOrRegisterTimer("simplify/duration", r),
		pointsIn:      metrics.GetOrRegisterCounter("simplify/points/in", r),
		pointsOut:     metrics.GetOrRegisterCounter("simplify/points/out", r),
	}
}

func (s *Simplifier) Simplify(track trackpoint.Track) trackpoint.Track {
	start := time.Now()
	out := Simplify(track, s.ToleranceFeet)
	s.timer.UpdateSince(start)
	s.pointsIn.Inc(int64(len(track)))
	s.pointsOut.Inc(int64(len(out)))
	return out
}
