package state

import (
	"errors"
	"testing"

	"github.com/trailimage/trailmap/conceptual"
	"github.com/trailimage/trailmap/geo/measure"
	"github.com/trailimage/trailmap/geo/summary"
	"github.com/trailimage/trailmap/types/photo"
	"github.com/trailimage/trailmap/types/trackpoint"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_Track(t *testing.T) {
	s := openTestStore(t)
	slug := conceptual.PostSlug("kaniksu-loop")
	track := trackpoint.Track{
		{Lon: -116.56, Lat: 48.3, Elevation: 2100, Time: 1471708800000},
		{Lon: -116.55, Lat: 48.31, Elevation: 2141, Time: 1471709400000, Speed: 4.25},
	}
	if err := s.PutTrack(slug, track); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetTrack(slug)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != track[0] || got[1] != track[1] {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestStore_NotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetTrack("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
	if _, err := s.GetSummary("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
	if _, err := s.GetPhotos("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestStore_Summary(t *testing.T) {
	s := openTestStore(t)
	track := trackpoint.Track{{Lon: 0, Lat: 0, Time: 1}, {Lon: 0, Lat: 1, Time: 3600001}}
	sum := summary.Of(measure.New(measure.Imperial), track, track)
	if err := s.PutSummary("a", sum); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetSummary("a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Length != sum.Length || got.DurationHours != 1 || !got.Start.Equal(sum.Start) {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestStore_PhotosAndSlugs(t *testing.T) {
	s := openTestStore(t)
	photos := photo.Photos{{ID: "1", Title: "one", Lon: -116.2, Lat: 43.6}}
	if err := s.PutPhotos("b", photos); err != nil {
		t.Fatal(err)
	}
	if err := s.PutTrack("a", trackpoint.Track{{Lon: 1, Lat: 1}}); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetPhotos("b")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "1" || got[0].Lat != 43.6 {
		t.Errorf("unexpected photos %+v", got)
	}
	fc, err := s.GetPhotoFeatures("b")
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 1 {
		t.Errorf("want 1 feature, got %d", len(fc.Features))
	}

	slugs, err := s.Slugs()
	if err != nil {
		t.Fatal(err)
	}
	if len(slugs) != 2 || slugs[0] != "a" || slugs[1] != "b" {
		t.Errorf("unexpected slugs %v", slugs)
	}

	if err := s.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTrack("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted track should be gone, got %v", err)
	}
	if err := s.Delete("never"); err != nil {
		t.Errorf("deleting a missing post should not fail: %v", err)
	}
}

func TestStore_ReadOnly(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.PutTrack("a", trackpoint.Track{{Lon: 1, Lat: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	ro, err := Open(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	defer ro.Close()
	if _, err := ro.GetTrack("a"); err != nil {
		t.Errorf("read only store should read: %v", err)
	}
	if err := ro.PutTrack("b", trackpoint.Track{{Lon: 1, Lat: 1}}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("want ErrReadOnly, got %v", err)
	}
}

func TestStore_EmptySlug(t *testing.T) {
	s := openTestStore(t)
	if err := s.PutTrack("", trackpoint.Track{}); err == nil {
		t.Error("want error for empty slug")
	}
}
