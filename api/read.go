package api

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/trailimage/trailmap/conceptual"
	"github.com/trailimage/trailmap/geo/cluster"
	"github.com/trailimage/trailmap/geo/summary"
	"github.com/trailimage/trailmap/metrics"
	"github.com/trailimage/trailmap/names"
	"github.com/trailimage/trailmap/types/photo"
	"github.com/trailimage/trailmap/types/trackpoint"
)

// Track is the post's simplified track.
func (s *Site) Track(slug conceptual.PostSlug) (trackpoint.Track, error) {
	slug = names.Slug(slug.String())
	if t, ok := s.tracks.Get(slug); ok {
		metrics.TrackLRUHits.Inc(1)
		return t, nil
	}
	t, err := s.Store.GetTrack(slug)
	if err != nil {
		return nil, err
	}
	s.tracks.Add(slug, t)
	return t, nil
}

func (s *Site) Summary(slug conceptual.PostSlug) (*summary.Summary, error) {
	return s.Store.GetSummary(names.Slug(slug.String()))
}

func (s *Site) Photos(slug conceptual.PostSlug) (photo.Photos, error) {
	return s.Store.GetPhotos(names.Slug(slug.String()))
}

// Nearest returns up to k of the post's photos nearest pt at map zoom.
func (s *Site) Nearest(slug conceptual.PostSlug, pt orb.Point, zoom float64, k int) ([]cluster.Result, error) {
	photos, err := s.Photos(slug)
	if err != nil {
		return nil, err
	}
	return cluster.NearestDistance(photos.Features(), pt, zoom, k), nil
}

func (s *Site) Slugs() ([]conceptual.PostSlug, error) {
	return s.Store.Slugs()
}

// NearestCollection is Nearest as a FeatureCollection, each feature
// carrying its "distance".
func NearestCollection(results []cluster.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range results {
		f := r.Feature
		f.Properties["distance"] = r.Distance
		fc.Append(f)
	}
	return fc
}
