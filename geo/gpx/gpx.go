// Package gpx reads GPX documents into tracks.
package gpx

import (
	"errors"
	"fmt"
	"io"

	"github.com/tkrajina/gpxgo/gpx"
	"github.com/trailimage/trailmap/geo/measure"
	"github.com/trailimage/trailmap/geo/privacy"
	"github.com/trailimage/trailmap/types/trackpoint"
)

var (
	ErrNoTracks  = errors.New("gpx: no track points")
	ErrMalformed = errors.New("gpx: malformed document")
)

type Options struct {
	Engine  measure.Engine
	Privacy privacy.Zone
}

// NamedTrack is one <trk>, its segments joined in order.
type NamedTrack struct {
	Name   string
	Points trackpoint.Track
}

// Parse reads every track in r. Elevations are converted from meters by
// opts.Engine and times become epoch milliseconds. An invalid point fails
// the whole parse. Points within the privacy zone are dropped, and tracks
// left empty by that are omitted.
func Parse(r io.Reader, opts Options) ([]NamedTrack, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var tracks []NamedTrack
	total := 0
	for ti, trk := range doc.Tracks {
		var points trackpoint.Track
		for si, seg := range trk.Segments {
			for pi, p := range seg.Points {
				tp, err := convert(opts.Engine, p)
				if err != nil {
					return nil, fmt.Errorf("track %d segment %d point %d: %w", ti, si, pi, err)
				}
				points = append(points, tp)
			}
		}
		total += len(points)
		points = privacy.Filter(opts.Engine, points, opts.Privacy)
		if len(points) == 0 {
			continue
		}
		tracks = append(tracks, NamedTrack{Name: trk.Name, Points: points})
	}
	if total == 0 {
		return nil, ErrNoTracks
	}
	return tracks, nil
}

func convert(e measure.Engine, p gpx.GPXPoint) (trackpoint.TrackPoint, error) {
	tp := trackpoint.TrackPoint{Lon: p.Longitude, Lat: p.Latitude}
	if p.Elevation.NotNull() {
		tp.Elevation = e.Elevation(p.Elevation.Value())
	}
	if !p.Timestamp.IsZero() {
		tp.Time = p.Timestamp.UnixMilli()
	}
	return tp, tp.Validate()
}

// Flatten joins tracks end to end.
func Flatten(tracks []NamedTrack) trackpoint.Track {
	n := 0
	for _, t := range tracks {
		n += len(t.Points)
	}
	out := make(trackpoint.Track, 0, n)
	for _, t := range tracks {
		out = append(out, t.Points...)
	}
	return out
}

// Name is the first non-empty track name.
func Name(tracks []NamedTrack) string {
	for _, t := range tracks {
		if t.Name != "" {
			return t.Name
		}
	}
	return ""
}
