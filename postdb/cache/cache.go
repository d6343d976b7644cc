package cache

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jellydator/ttlcache/v3"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/trailimage/trailmap/conceptual"
	"github.com/trailimage/trailmap/types/trackpoint"
)

// Item is a rendered, gzip compressed response.
type Item struct {
	Slug     conceptual.PostSlug
	Body     []byte
	ETag     string
	MimeType string
	Created  time.Time
}

// Bytes returns the uncompressed body.
func (i Item) Bytes() ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(i.Body))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Output caches rendered responses for a fixed TTL.
type Output struct {
	c      *ttlcache.Cache[string, Item]
	logger *slog.Logger
}

func NewOutput(ttl time.Duration) *Output {
	c := ttlcache.New[string, Item](
		ttlcache.WithTTL[string, Item](ttl),
		ttlcache.WithDisableTouchOnHit[string, Item](),
	)
	go c.Start()
	return &Output{c: c, logger: slog.With("d", "cache")}
}

// Stop ends the expiry loop.
func (o *Output) Stop() {
	o.c.Stop()
}

func (o *Output) Get(key string) (Item, bool) {
	it := o.c.Get(key)
	if it == nil {
		return Item{}, false
	}
	return it.Value(), true
}

// Add compresses body and caches it under key. The ETag is the slug and
// the nanosecond it was created.
func (o *Output) Add(key string, slug conceptual.PostSlug, mimeType string, body []byte) (Item, error) {
	var buf bytes.Buffer
	gzw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return Item{}, err
	}
	if _, err := gzw.Write(body); err != nil {
		return Item{}, err
	}
	if err := gzw.Close(); err != nil {
		return Item{}, err
	}
	now := time.Now()
	it := Item{
		Slug:     slug,
		Body:     buf.Bytes(),
		ETag:     slug.String() + "_" + strconv.FormatInt(now.UnixNano(), 36),
		MimeType: mimeType,
		Created:  now,
	}
	o.c.Set(key, it, ttlcache.DefaultTTL)
	o.logger.Debug("Cached output", "key", key, "raw", len(body), "gz", len(it.Body))
	return it, nil
}

// Keys lists the cached keys, sorted.
func (o *Output) Keys() []string {
	keys := o.c.Keys()
	sort.Strings(keys)
	return keys
}

// Remove deletes keys and returns how many were present.
func (o *Output) Remove(keys ...string) int {
	n := 0
	for _, k := range keys {
		if o.c.Has(k) {
			n++
		}
		o.c.Delete(k)
	}
	return n
}

// RemoveSlug deletes every key rendered from slug.
func (o *Output) RemoveSlug(slug conceptual.PostSlug) int {
	prefix := slug.String() + "/"
	var keys []string
	for _, k := range o.c.Keys() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return o.Remove(keys...)
}

func (o *Output) Clear() {
	o.c.DeleteAll()
}

func (o *Output) Len() int {
	return o.c.Len()
}

// Key is "<slug>/<variant>/<hash>" where the hash covers whatever
// configuration shapes the rendering, so changed settings miss.
func Key(slug conceptual.PostSlug, variant string, cfg any) (string, error) {
	hash, err := hashstructure.Hash(cfg, hashstructure.FormatV2, nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%x", slug, variant, hash), nil
}

// NewTrackLRU caches decoded simplified tracks by slug.
func NewTrackLRU(size int) (*lru.Cache[conceptual.PostSlug, trackpoint.Track], error) {
	return lru.New[conceptual.PostSlug, trackpoint.Track](size)
}
