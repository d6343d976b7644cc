package webd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/olahol/melody"
	"github.com/trailimage/trailmap/api"
	"github.com/trailimage/trailmap/events"
	"github.com/trailimage/trailmap/params"
	"github.com/trailimage/trailmap/stream"
)

const (
	// maxUploadBytes caps POSTed GPX and photo documents.
	maxUploadBytes = 32 << 20
	// recentUpdatesN updates are replayed to each new websocket client.
	recentUpdatesN = 16
)

type WebDaemon struct {
	Config *params.WebDaemonConfig
	site   *api.Site

	logger         *slog.Logger
	melodyInstance *melody.Melody
	updates        chan events.PostUpdated
	updatesSub     event.Subscription
	recent         *stream.RingBuffer[events.PostUpdated]
	token          string
	started        time.Time
}

// NewWebDaemon serves site. The daemon does not own the site; close the
// daemon before the site.
func NewWebDaemon(config *params.WebDaemonConfig, site *api.Site) (*WebDaemon, error) {
	if site == nil {
		return nil, errors.New("webd: nil site")
	}
	if config == nil {
		config = params.DefaultWebDaemonConfig()
	}
	token := config.Token
	if token == "" {
		token = os.Getenv("TRAILMAP_TOKEN")
	}
	s := &WebDaemon{
		Config:  config,
		site:    site,
		logger:  slog.With("d", "web"),
		token:   token,
		recent:  stream.NewRingBuffer[events.PostUpdated](recentUpdatesN),
		started: time.Now(),
	}
	s.initMelody()
	return s, nil
}

// Run serves until ctx is canceled, then shuts the server down gracefully.
func (s *WebDaemon) Run(ctx context.Context) error {
	network := s.Config.Network
	if network == "" {
		network = "tcp"
	}
	ln, err := net.Listen(network, s.Config.Address)
	if err != nil {
		return err
	}
	server := &http.Server{
		Handler:           s.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting web daemon", "network", network, "address", ln.Addr().String())

	errs := make(chan error, 1)
	go func() {
		errs <- server.Serve(ln)
	}()

	select {
	case err := <-errs:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	s.logger.Info("Stopping web daemon")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close stops broadcasting updates and disconnects websocket clients.
func (s *WebDaemon) Close() {
	if s.updatesSub != nil {
		s.updatesSub.Unsubscribe()
	}
	if !s.melodyInstance.IsClosed() {
		_ = s.melodyInstance.Close()
	}
}

func (s *WebDaemon) NewRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(false)
	router.Use(loggingMiddleware)

	router.Path("/socket").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.melodyInstance.HandleRequest(w, r); err != nil {
			s.logger.Warn("Websocket request failed", "error", err)
		}
	})

	apiRoutes := router.NewRoute().Subrouter()

	// All API routes use permissive CORS settings.
	apiRoutes.Use(permissiveCorsMiddleware)
	apiRoutes.Use(requestsMeterMiddleware)

	apiRoutes.Path("/ping").HandlerFunc(pingPong).Methods(http.MethodGet)

	// Cached renders set their own content type.
	apiRoutes.Path("/posts/{slug}/track.json").HandlerFunc(s.handleTrackJSON).Methods(http.MethodGet)
	apiRoutes.Path("/posts/{slug}/track.kml").HandlerFunc(s.handleTrackKML).Methods(http.MethodGet)

	apiJSONRoutes := apiRoutes.NewRoute().Subrouter()
	apiJSONRoutes.Use(contentTypeMiddlewareFunc("application/json"))

	apiJSONRoutes.Path("/status").HandlerFunc(s.statusReport).Methods(http.MethodGet)
	apiJSONRoutes.Path("/posts").HandlerFunc(s.handlePosts).Methods(http.MethodGet)
	apiJSONRoutes.Path("/posts/{slug}/summary.json").HandlerFunc(s.handleSummary).Methods(http.MethodGet)
	apiJSONRoutes.Path("/posts/{slug}/photos.json").HandlerFunc(s.handlePhotos).Methods(http.MethodGet)
	apiJSONRoutes.Path("/posts/{slug}/nearest").HandlerFunc(s.handleNearest).Methods(http.MethodGet)

	authenticatedAPIRoutes := apiJSONRoutes.NewRoute().Subrouter()
	authenticatedAPIRoutes.Use(s.tokenAuthenticationMiddleware)

	authenticatedAPIRoutes.Path("/posts/{slug}/track").HandlerFunc(s.handleImportTrack).Methods(http.MethodPost)
	authenticatedAPIRoutes.Path("/posts/{slug}/photos").HandlerFunc(s.handleImportPhotos).Methods(http.MethodPost)
	authenticatedAPIRoutes.Path("/posts/{slug}").HandlerFunc(s.handleDeletePost).Methods(http.MethodDelete)
	authenticatedAPIRoutes.Path("/cache/keys").HandlerFunc(s.handleCacheKeys).Methods(http.MethodGet)
	authenticatedAPIRoutes.Path("/cache").HandlerFunc(s.handleCacheDelete).Methods(http.MethodDelete)

	return router
}
