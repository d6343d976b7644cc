package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/trailimage/trailmap/conceptual"
	"github.com/trailimage/trailmap/geo/summary"
	"github.com/trailimage/trailmap/params"
	"github.com/trailimage/trailmap/types/photo"
	"github.com/trailimage/trailmap/types/trackpoint"
	"go.etcd.io/bbolt"
)

var ErrNotFound = errors.New("not found")

var ErrReadOnly = errors.New("state is read only")

// Store persists each post's simplified track, summary and photo
// features, keyed by slug.
type Store struct {
	DB    *bbolt.DB
	rOnly bool
}

// Open opens or creates posts.db under dir. A writable store holds bbolt's
// file lock; other opens of the same dir block until it is closed.
func Open(dir string, readOnly bool) (*Store, error) {
	if !readOnly {
		if err := os.MkdirAll(dir, 0770); err != nil {
			return nil, err
		}
	}
	db, err := bbolt.Open(filepath.Join(dir, params.StateDBName), 0600, &bbolt.Options{
		ReadOnly: readOnly,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db, rOnly: readOnly}
	if !readOnly {
		err = db.Update(func(tx *bbolt.Tx) error {
			for _, b := range [][]byte{params.TracksBucket, params.SummariesBucket, params.PhotosBucket} {
				if _, err := tx.CreateBucketIfNotExists(b); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) storeKV(bucket []byte, slug conceptual.PostSlug, data []byte) error {
	if s.rOnly {
		return ErrReadOnly
	}
	if slug.Empty() {
		return fmt.Errorf("storeKV: empty slug")
	}
	if data == nil {
		return fmt.Errorf("storeKV: nil data")
	}
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(slug), data)
	})
}

func (s *Store) readKV(bucket []byte, slug conceptual.PostSlug) ([]byte, error) {
	buf := bytes.NewBuffer([]byte{})
	err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(slug))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid for the life of the transaction.
		buf.Write(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Store) PutTrack(slug conceptual.PostSlug, track trackpoint.Track) error {
	b, err := json.Marshal(track)
	if err != nil {
		return err
	}
	return s.storeKV(params.TracksBucket, slug, b)
}

func (s *Store) GetTrack(slug conceptual.PostSlug) (trackpoint.Track, error) {
	b, err := s.readKV(params.TracksBucket, slug)
	if err != nil {
		return nil, err
	}
	var track trackpoint.Track
	if err := json.Unmarshal(b, &track); err != nil {
		return nil, fmt.Errorf("decode track %s: %w", slug, err)
	}
	return track, nil
}

func (s *Store) PutSummary(slug conceptual.PostSlug, sum *summary.Summary) error {
	b, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	return s.storeKV(params.SummariesBucket, slug, b)
}

func (s *Store) GetSummary(slug conceptual.PostSlug) (*summary.Summary, error) {
	b, err := s.readKV(params.SummariesBucket, slug)
	if err != nil {
		return nil, err
	}
	sum := &summary.Summary{}
	if err := json.Unmarshal(b, sum); err != nil {
		return nil, fmt.Errorf("decode summary %s: %w", slug, err)
	}
	return sum, nil
}

// PutPhotos stores the photos as a GeoJSON FeatureCollection.
func (s *Store) PutPhotos(slug conceptual.PostSlug, photos photo.Photos) error {
	b, err := json.Marshal(photos.FeatureCollection())
	if err != nil {
		return err
	}
	return s.storeKV(params.PhotosBucket, slug, b)
}

func (s *Store) GetPhotos(slug conceptual.PostSlug) (photo.Photos, error) {
	b, err := s.readKV(params.PhotosBucket, slug)
	if err != nil {
		return nil, err
	}
	return photo.Decode(b)
}

// GetPhotoFeatures returns the stored collection without decoding photos.
func (s *Store) GetPhotoFeatures(slug conceptual.PostSlug) (*geojson.FeatureCollection, error) {
	b, err := s.readKV(params.PhotosBucket, slug)
	if err != nil {
		return nil, err
	}
	return geojson.UnmarshalFeatureCollection(b)
}

// Slugs lists every post with a track or photos, sorted.
func (s *Store) Slugs() ([]conceptual.PostSlug, error) {
	seen := map[conceptual.PostSlug]bool{}
	err := s.DB.View(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{params.TracksBucket, params.PhotosBucket} {
			b := tx.Bucket(name)
			if b == nil {
				continue
			}
			if err := b.ForEach(func(k, _ []byte) error {
				seen[conceptual.PostSlug(k)] = true
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]conceptual.PostSlug, 0, len(seen))
	for slug := range seen {
		out = append(out, slug)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Delete removes everything stored for slug. Deleting a missing post is
// not an error.
func (s *Store) Delete(slug conceptual.PostSlug) error {
	if s.rOnly {
		return ErrReadOnly
	}
	return s.DB.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{params.TracksBucket, params.SummariesBucket, params.PhotosBucket} {
			b := tx.Bucket(name)
			if b == nil {
				continue
			}
			if err := b.Delete([]byte(slug)); err != nil {
				return err
			}
		}
		return nil
	})
}
