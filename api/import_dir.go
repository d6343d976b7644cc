package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/trailimage/trailmap/conceptual"
	"github.com/trailimage/trailmap/geo/summary"
	"github.com/trailimage/trailmap/names"
	"github.com/trailimage/trailmap/stream"
)

// DirImport is the outcome of importing one post directory.
type DirImport struct {
	Slug    conceptual.PostSlug
	Summary *summary.Summary
	Photos  int
	Err     error
}

// Post directory file names, tried in order. Gzipped variants are gunzipped.
var (
	dirTrackNames  = []string{"track.gpx", "track.gpx.gz"}
	dirPhotosNames = []string{"photos.json", "photos.json.gz"}
)

// ImportDir imports every post directory under root, each named for its
// post, with up to workers posts at a time. A directory may hold a track,
// photos, or both; directories with neither are skipped. Results are sorted
// by slug; a failed post does not stop the others.
func (s *Site) ImportDir(ctx context.Context, root string, workers int) ([]DirImport, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !names.Slug(e.Name()).Empty() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}

	importDir := func(dir string) DirImport {
		return s.importPostDir(ctx, dir)
	}
	var imported <-chan DirImport
	if workers > 1 {
		imported = stream.Workers(ctx, workers, importDir, stream.Slice(ctx, dirs))
	} else {
		imported = stream.Transform(ctx, importDir, stream.Slice(ctx, dirs))
	}
	results := stream.Collect(ctx,
		stream.Filter(ctx, func(r DirImport) bool { return !r.Slug.Empty() }, imported))

	sort.Slice(results, func(i, j int) bool { return results[i].Slug < results[j].Slug })
	return results, ctx.Err()
}

// importPostDir gives a zero DirImport for a directory with nothing to import.
func (s *Site) importPostDir(ctx context.Context, dir string) DirImport {
	slug := names.Slug(filepath.Base(dir))
	trackData, err := readFirst(dir, dirTrackNames)
	if err != nil {
		return DirImport{Slug: slug, Err: err}
	}
	photoData, err := readFirst(dir, dirPhotosNames)
	if err != nil {
		return DirImport{Slug: slug, Err: err}
	}
	if trackData == nil && photoData == nil {
		s.logger.Debug("Nothing to import", "dir", dir)
		return DirImport{}
	}

	res := DirImport{Slug: slug}
	if trackData != nil {
		res.Summary, res.Err = s.ImportGPX(ctx, slug, bytes.NewReader(trackData))
		if res.Err != nil {
			return res
		}
	}
	if photoData != nil {
		photos, err := s.ImportPhotos(ctx, slug, photoData)
		res.Photos, res.Err = len(photos), err
	}
	return res
}

// readFirst reads the first of files present in dir. Missing files give nil.
func readFirst(dir string, files []string) ([]byte, error) {
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if filepath.Ext(name) != ".gz" {
			return data, nil
		}
		gzr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer gzr.Close()
		return io.ReadAll(gzr)
	}
	return nil, nil
}
