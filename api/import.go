package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/trailimage/trailmap/conceptual"
	"github.com/trailimage/trailmap/events"
	"github.com/trailimage/trailmap/geo/gpx"
	"github.com/trailimage/trailmap/geo/summary"
	"github.com/trailimage/trailmap/metrics"
	"github.com/trailimage/trailmap/names"
	"github.com/trailimage/trailmap/params"
	"github.com/trailimage/trailmap/rgeo"
	"github.com/trailimage/trailmap/types/photo"
)

// ImportGPX replaces the post's track. The GPX is parsed and privacy
// filtered, archived as sent, then simplified and summarized. Multiple GPX
// tracks are joined in document order.
func (s *Site) ImportGPX(ctx context.Context, slug conceptual.PostSlug, r io.Reader) (sum *summary.Summary, err error) {
	slug = names.Slug(slug.String())
	if slug.Empty() {
		return nil, fmt.Errorf("import: empty slug")
	}
	logger := s.logger.With("slug", slug)
	defer func() {
		if err != nil {
			metrics.ImportErrors.Inc(1)
			logger.Error("Import GPX failed", "error", err)
		}
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	tracks, err := gpx.Parse(bytes.NewReader(data), gpx.Options{
		Engine:  s.Engine,
		Privacy: s.Config.PrivacyZone(),
	})
	if err != nil {
		return nil, err
	}
	raw := s.Engine.WithSpeeds(gpx.Flatten(tracks))
	if len(raw) == 0 {
		return nil, ErrEmptyTrack
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := s.Flat.ForPost(slug).WriteGZ(params.TrackArchiveGZName, data); err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}

	simplified := s.simplifier.Simplify(raw)
	sum = summary.Of(s.Engine, raw, simplified)
	sum.Name = gpx.Name(tracks)
	if s.Config.ReverseGeocode {
		place, err := rgeo.Locate(raw[0].Point())
		if err != nil {
			logger.Warn("Reverse geocode failed", "error", err)
		} else {
			sum.Place = place.String()
		}
	}

	if err := s.Store.PutTrack(slug, simplified); err != nil {
		return nil, err
	}
	if err := s.Store.PutSummary(slug, sum); err != nil {
		return nil, err
	}
	s.tracks.Remove(slug)
	metrics.TrackImports.Inc(1)

	logger.Info("Imported GPX",
		"tracks", len(tracks),
		"points", len(raw),
		"simplified", len(simplified),
		"summary", sum.String())
	events.PostUpdatedFeed.Send(events.PostUpdated{Slug: slug, Part: events.PostPartTrack, At: time.Now()})
	return sum, nil
}

// ImportPhotos replaces the post's photos. data is anything photo.Decode
// accepts; it is archived as sent.
func (s *Site) ImportPhotos(ctx context.Context, slug conceptual.PostSlug, data []byte) (photo.Photos, error) {
	slug = names.Slug(slug.String())
	if slug.Empty() {
		return nil, fmt.Errorf("import: empty slug")
	}
	photos, err := photo.Decode(data)
	if err != nil {
		metrics.ImportErrors.Inc(1)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.Flat.ForPost(slug).WriteGZ(params.PhotosArchiveGZName, data); err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	photos.SortByTaken()
	if err := s.Store.PutPhotos(slug, photos); err != nil {
		return nil, err
	}
	metrics.PhotoImports.Inc(1)
	s.logger.Info("Imported photos", "slug", slug, "photos", len(photos))
	events.PostUpdatedFeed.Send(events.PostUpdated{Slug: slug, Part: events.PostPartPhotos, At: time.Now()})
	return photos, nil
}

// DeletePost removes everything stored and archived for the post.
func (s *Site) DeletePost(slug conceptual.PostSlug) error {
	slug = names.Slug(slug.String())
	if slug.Empty() {
		return fmt.Errorf("delete: empty slug")
	}
	if err := s.Store.Delete(slug); err != nil {
		return err
	}
	s.tracks.Remove(slug)
	if err := os.RemoveAll(s.Flat.ForPost(slug).Path()); err != nil {
		return err
	}
	s.logger.Info("Deleted post", "slug", slug)
	events.PostUpdatedFeed.Send(events.PostUpdated{Slug: slug, Part: events.PostPartAll, At: time.Now()})
	return nil
}
