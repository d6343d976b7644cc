package params

import (
	"compress/gzip"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/mitchellh/go-homedir"
)

func init() {
	metrics.Enabled = true
}

const (
	PostsDir = "posts"

	StateDBName         = "posts.db"
	TrackArchiveGZName  = "track.gpx.gz"
	PhotosArchiveGZName = "photos.json.gz"
)

var (
	TracksBucket    = []byte("tracks")
	SummariesBucket = []byte("summaries")
	PhotosBucket    = []byte("photos")
)

var DefaultDatadirRoot = func() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".trailmap"
	}
	return filepath.Join(home, ".trailmap")
}()

var DefaultGZipCompressionLevel = gzip.BestCompression

var (
	DefaultCacheTTL = 24 * time.Hour
	// DefaultCacheMaxAge is sent as Cache-Control max-age for rendered
	// tracks.
	DefaultCacheMaxAge = 24 * time.Hour
)
