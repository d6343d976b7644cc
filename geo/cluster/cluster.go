// Package cluster finds the photo features nearest a map click.
package cluster

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Result is a matched feature and its planar distance, in degrees, from
// the query point.
type Result struct {
	Feature  *geojson.Feature
	Distance float64
}

// HalfWidth is the half side, in degrees, of the candidate box around a
// query at the given map zoom. Higher zoom narrows the box. Map zoom is
// fractional.
func HalfWidth(zoom float64) float64 {
	return 3 * zoom / math.Pow(2, zoom)
}

// Box is the candidate bound centered on query.
func Box(query orb.Point, zoom float64) orb.Bound {
	w := HalfWidth(zoom)
	return orb.Bound{
		Min: orb.Point{query.X() - w, query.Y() - w},
		Max: orb.Point{query.X() + w, query.Y() + w},
	}
}

// NearestDistance returns up to k point features inside the zoom box
// around query, nearest first. Equidistant features keep their input
// order. Features without point geometry are ignored.
func NearestDistance(features []*geojson.Feature, query orb.Point, zoom float64, k int) []Result {
	if k <= 0 {
		return []Result{}
	}
	box := Box(query, zoom)
	results := make([]Result, 0)
	for _, f := range features {
		if f == nil {
			continue
		}
		pt, ok := f.Geometry.(orb.Point)
		if !ok || !box.Contains(pt) {
			continue
		}
		results = append(results, Result{Feature: f, Distance: planar.Distance(query, pt)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Nearest is NearestDistance without the distances.
func Nearest(features []*geojson.Feature, query orb.Point, zoom float64, k int) []*geojson.Feature {
	results := NearestDistance(features, query, zoom, k)
	out := make([]*geojson.Feature, len(results))
	for i, r := range results {
		out[i] = r.Feature
	}
	return out
}
