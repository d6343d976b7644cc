package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/trailimage/trailmap/conceptual"
	"github.com/trailimage/trailmap/geo/export"
	"github.com/trailimage/trailmap/geo/summary"
	"github.com/trailimage/trailmap/metrics"
	"github.com/trailimage/trailmap/names"
	"github.com/trailimage/trailmap/state"
)

const (
	MimeGeoJSON = "application/geo+json"
	MimeKML     = "application/vnd.google-earth.kml+xml"
)

// TrackDocument is what map clients load for a post.
type TrackDocument struct {
	Slug    conceptual.PostSlug `json:"slug"`
	Bounds  [2][2]float64       `json:"bounds"`
	Summary *summary.Summary    `json:"summary,omitempty"`
	Label   string              `json:"label,omitempty"`
	Track   json.RawMessage     `json:"track"`
	// Polyline is the encoded form of Track for static map images.
	Polyline string `json:"polyline"`
}

// RenderTrackJSON renders the post's TrackDocument.
func (s *Site) RenderTrackJSON(slug conceptual.PostSlug) ([]byte, error) {
	defer metrics.RenderTimer.UpdateSince(time.Now())
	slug = names.Slug(slug.String())
	track, err := s.Track(slug)
	if err != nil {
		return nil, err
	}
	sum, err := s.Summary(slug)
	if err != nil && !errors.Is(err, state.ErrNotFound) {
		return nil, err
	}
	name := slug.String()
	if sum != nil && sum.Name != "" {
		name = sum.Name
	}
	feature, err := json.Marshal(export.GeoJSON(name, track))
	if err != nil {
		return nil, err
	}
	doc := TrackDocument{
		Slug:     slug,
		Bounds:   export.Bounds(track),
		Summary:  sum,
		Track:    feature,
		Polyline: export.Polyline(track),
	}
	if sum != nil {
		doc.Label = sum.String()
	}
	return json.Marshal(doc)
}

func (s *Site) RenderTrackKML(slug conceptual.PostSlug) ([]byte, error) {
	defer metrics.RenderTimer.UpdateSince(time.Now())
	slug = names.Slug(slug.String())
	track, err := s.Track(slug)
	if err != nil {
		return nil, err
	}
	name := slug.String()
	if sum, err := s.Summary(slug); err == nil && sum.Name != "" {
		name = sum.Name
	}
	var buf bytes.Buffer
	if err := export.KML(&buf, s.Engine, name, track); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
