package webd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb"
	"github.com/trailimage/trailmap/api"
	"github.com/trailimage/trailmap/common"
	"github.com/trailimage/trailmap/conceptual"
	"github.com/trailimage/trailmap/geo/gpx"
	"github.com/trailimage/trailmap/metrics"
	"github.com/trailimage/trailmap/names"
	"github.com/trailimage/trailmap/params"
	"github.com/trailimage/trailmap/postdb/cache"
	"github.com/trailimage/trailmap/state"
	"github.com/trailimage/trailmap/types/photo"
	"github.com/trailimage/trailmap/types/trackpoint"
)

const (
	defaultNearestZoom = 10
	defaultNearestK    = 5
)

var errBadRequest = errors.New("bad request")

func pingPong(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type webDaemonStatus struct {
	StartedAt time.Time               `json:"started_at"`
	Uptime    string                  `json:"uptime"`
	Config    *params.WebDaemonConfig `json:"config"`
	Map       params.MapConfig        `json:"map"`
	Cached    int                     `json:"cached"`
	WSOpen    bool                    `json:"ws_open"`
	WSConns   int                     `json:"ws_conns"`
	Metrics   map[string]any          `json:"metrics"`
}

func (s *WebDaemon) statusReport(w http.ResponseWriter, r *http.Request) {
	st := webDaemonStatus{
		StartedAt: s.started,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Config:    s.Config,
		Map:       s.site.Config.MapConfig,
		WSOpen:    !s.melodyInstance.IsClosed(),
		WSConns:   s.melodyInstance.Len(),
		Metrics:   metrics.Snapshot(),
	}
	if s.site.Output != nil {
		st.Cached = s.site.Output.Len()
	}
	j, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		s.logger.Error("Failed to marshal status", "error", err)
		http.Error(w, "Failed to marshal status", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(j); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

func getRequestSlug(r *http.Request) conceptual.PostSlug {
	return names.Slug(mux.Vars(r)["slug"])
}

func (s *WebDaemon) handleGetSlugForRequest(w http.ResponseWriter, r *http.Request) (conceptual.PostSlug, bool) {
	slug := getRequestSlug(r)
	if slug.Empty() {
		s.logger.Warn("Missing post", "url", r.URL)
		http.Error(w, "Missing post", http.StatusBadRequest)
		return "", false
	}
	return slug, true
}

// writeError maps err to a status: unknown posts are 404, unusable
// input is 400, the rest 500.
func (s *WebDaemon) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, state.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, trackpoint.ErrInvalidTrackPoint),
		errors.Is(err, gpx.ErrNoTracks),
		errors.Is(err, gpx.ErrMalformed),
		errors.Is(err, photo.ErrUnrecognized),
		errors.Is(err, api.ErrEmptyTrack):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		// The client went away.
		return
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "url", r.URL, "error", err)
	} else {
		s.logger.Debug("Request rejected", "url", r.URL, "status", status, "error", err)
	}
	http.Error(w, err.Error(), status)
}

func (s *WebDaemon) writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

func (s *WebDaemon) handlePosts(w http.ResponseWriter, r *http.Request) {
	slugs, err := s.site.Slugs()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if slugs == nil {
		slugs = []conceptual.PostSlug{}
	}
	s.writeJSON(w, slugs)
}

func (s *WebDaemon) handleTrackJSON(w http.ResponseWriter, r *http.Request) {
	s.serveRendered(w, r, "track.json", api.MimeGeoJSON, s.site.RenderTrackJSON)
}

func (s *WebDaemon) handleTrackKML(w http.ResponseWriter, r *http.Request) {
	s.serveRendered(w, r, "track.kml", api.MimeKML, s.site.RenderTrackKML)
}

// serveRendered writes render's output for the request's post, through the
// output cache when it is enabled.
func (s *WebDaemon) serveRendered(w http.ResponseWriter, r *http.Request, variant, mimeType string,
	render func(conceptual.PostSlug) ([]byte, error)) {

	slug, ok := s.handleGetSlugForRequest(w, r)
	if !ok {
		return
	}
	out := s.site.Output
	if out == nil {
		b, err := render(slug)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", mimeType)
		_, _ = w.Write(b)
		return
	}

	key, err := cache.Key(slug, variant, s.site.Config.MapConfig)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	item, ok := out.Get(key)
	if ok {
		metrics.OutputHits.Inc(1)
	} else {
		metrics.OutputMisses.Inc(1)
		b, err := render(slug)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		item, err = out.Add(key, slug, mimeType, b)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.writeCached(w, r, item)
}

func acceptsGzip(r *http.Request) bool {
	for _, v := range r.Header.Values("Accept-Encoding") {
		for _, enc := range strings.Split(v, ",") {
			enc, _, _ = strings.Cut(strings.TrimSpace(enc), ";")
			if enc == "gzip" || enc == "*" {
				return true
			}
		}
	}
	return false
}

func etagMatches(header, etag string) bool {
	for _, v := range strings.Split(header, ",") {
		v = strings.TrimSpace(v)
		v = strings.TrimPrefix(v, "W/")
		if v == "*" || strings.Trim(v, `"`) == etag {
			return true
		}
	}
	return false
}

func (s *WebDaemon) writeCached(w http.ResponseWriter, r *http.Request, item cache.Item) {
	h := w.Header()
	h.Set("ETag", strconv.Quote(item.ETag))
	h.Set("Cache-Control", fmt.Sprintf("max-age=%d, public", int(params.DefaultCacheMaxAge.Seconds())))
	h.Set("Vary", "Accept-Encoding")
	h.Set("Content-Type", item.MimeType)

	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, item.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if acceptsGzip(r) {
		h.Set("Content-Encoding", "gzip")
		h.Set("Content-Length", strconv.Itoa(len(item.Body)))
		_, _ = w.Write(item.Body)
		return
	}
	b, err := item.Bytes()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	_, _ = w.Write(b)
}

func (s *WebDaemon) handleSummary(w http.ResponseWriter, r *http.Request) {
	slug, ok := s.handleGetSlugForRequest(w, r)
	if !ok {
		return
	}
	sum, err := s.site.Summary(slug)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, sum)
}

func (s *WebDaemon) handlePhotos(w http.ResponseWriter, r *http.Request) {
	slug, ok := s.handleGetSlugForRequest(w, r)
	if !ok {
		return
	}
	fc, err := s.site.Store.GetPhotoFeatures(slug)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, fc)
}

// nearestParams reads lon and lat (required), zoom and k.
func nearestParams(r *http.Request) (pt orb.Point, zoom float64, k int, err error) {
	q := r.URL.Query()
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		return pt, 0, 0, fmt.Errorf("%w: lon %q", errBadRequest, q.Get("lon"))
	}
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return pt, 0, 0, fmt.Errorf("%w: lat %q", errBadRequest, q.Get("lat"))
	}
	zoom, k = defaultNearestZoom, defaultNearestK
	if v := q.Get("zoom"); v != "" {
		zoom, err = strconv.ParseFloat(v, 64)
		if err != nil || !common.IsFinite(zoom) || zoom < 0 {
			return pt, 0, 0, fmt.Errorf("%w: zoom %q", errBadRequest, v)
		}
	}
	if v := q.Get("k"); v != "" {
		k, err = strconv.Atoi(v)
		if err != nil || k < 1 {
			return pt, 0, 0, fmt.Errorf("%w: k %q", errBadRequest, v)
		}
	}
	return orb.Point{lon, lat}, zoom, k, nil
}

func (s *WebDaemon) handleNearest(w http.ResponseWriter, r *http.Request) {
	slug, ok := s.handleGetSlugForRequest(w, r)
	if !ok {
		return
	}
	pt, zoom, k, err := nearestParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	results, err := s.site.Nearest(slug, pt, zoom, k)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, api.NearestCollection(results))
}

func (s *WebDaemon) invalidate(slug conceptual.PostSlug) {
	if s.site.Output != nil {
		s.site.Output.RemoveSlug(slug)
	}
}

func (s *WebDaemon) handleImportTrack(w http.ResponseWriter, r *http.Request) {
	slug, ok := s.handleGetSlugForRequest(w, r)
	if !ok {
		return
	}
	if r.Body == nil {
		http.Error(w, "Please send a request body", http.StatusBadRequest)
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	sum, err := s.site.ImportGPX(r.Context(), slug, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// Later requests must not see the old render, whatever the feed is doing.
	s.invalidate(slug)
	s.writeJSON(w, sum)
}

func (s *WebDaemon) handleImportPhotos(w http.ResponseWriter, r *http.Request) {
	slug, ok := s.handleGetSlugForRequest(w, r)
	if !ok {
		return
	}
	if r.Body == nil {
		http.Error(w, "Please send a request body", http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	photos, err := s.site.ImportPhotos(r.Context(), slug, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, map[string]any{"slug": slug, "photos": len(photos)})
}

func (s *WebDaemon) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	slug, ok := s.handleGetSlugForRequest(w, r)
	if !ok {
		return
	}
	if err := s.site.DeletePost(slug); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidate(slug)
	s.writeJSON(w, map[string]any{"deleted": slug})
}

func (s *WebDaemon) handleCacheKeys(w http.ResponseWriter, r *http.Request) {
	keys := []string{}
	if s.site.Output != nil {
		keys = s.site.Output.Keys()
	}
	s.writeJSON(w, keys)
}

// handleCacheDelete removes ?key= keys, or every key cached for ?slug=,
// or with neither, everything.
func (s *WebDaemon) handleCacheDelete(w http.ResponseWriter, r *http.Request) {
	removed := 0
	if out := s.site.Output; out != nil {
		q := r.URL.Query()
		switch {
		case len(q["key"]) > 0:
			removed = out.Remove(q["key"]...)
		case q.Get("slug") != "":
			removed = out.RemoveSlug(names.Slug(q.Get("slug")))
		default:
			removed = out.Len()
			out.Clear()
		}
	}
	s.logger.Info("Cleared output cache", "removed", removed)
	s.writeJSON(w, map[string]int{"removed": removed})
}
