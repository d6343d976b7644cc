package testdata

import (
	"os"
	"path/filepath"
	"runtime"
)

// basepath is the root directory of this package.
var basepath string

func init() {
	_, currentFile, _, _ := runtime.Caller(0)
	basepath = filepath.Dir(currentFile)
}

// Path returns the absolute path of rel relative to this testdata/ directory.
// If rel is already absolute, it is returned unmodified.
// Taken from https://github.com/grpc/grpc-go/blob/master/testdata/testdata.go.
func Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(basepath, rel)
}

// Source_KaniksuLoop is a two track, three segment GPX with elevations
// and times.
var Source_KaniksuLoop = "./kaniksu-loop.gpx"

// Source_FlickrPhotoset is a Flickr photoset response with geotagged and
// untagged photos.
var Source_FlickrPhotoset = "./flickr-photoset.json"

// MustRead reads a testdata file or panics.
func MustRead(rel string) []byte {
	b, err := os.ReadFile(Path(rel))
	if err != nil {
		panic(err)
	}
	return b
}
