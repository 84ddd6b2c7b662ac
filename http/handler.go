package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sagarc03/photozip"
)

const (
	// NotFoundPath is where unknown archive tokens are redirected.
	NotFoundPath = "/404"

	archiveFilename = "photos.zip"
)

// Resolver maps archive tokens to photo directories.
type Resolver interface {
	Lookup(token string) (photozip.DirectoryEntry, bool)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// HeartbeatToken selects the heartbeat stream instead of an archive.
	// Empty disables the heartbeat.
	HeartbeatToken string
	// IndexFile is served at GET /. The built-in page is used when it is
	// empty or unreadable.
	IndexFile string
	CORS      CORSConfig
}

// Handler provides the HTTP surface for archive downloads.
type Handler struct {
	config    HandlerConfig
	registry  Resolver
	streamer  *photozip.Streamer
	heartbeat *photozip.Heartbeat
}

// NewHandler creates a new Handler. heartbeat may be nil when
// config.HeartbeatToken is empty.
func NewHandler(config *HandlerConfig, registry Resolver, streamer *photozip.Streamer, heartbeat *photozip.Heartbeat) *Handler {
	return &Handler{
		config:    *config,
		registry:  registry,
		streamer:  streamer,
		heartbeat: heartbeat,
	}
}

// Router returns an http.Handler with all routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/", h.handleIndex)
	r.Get("/archive/{token}/", h.handleArchive)
	r.Get(NotFoundPath, h.handleNotFoundPage)
	r.NotFound(writeDefaultNotFound)

	return r
}

// handleArchive classifies the token before touching the filesystem, so
// unknown tokens cost a single map lookup.
func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if h.heartbeat != nil && h.config.HeartbeatToken != "" && token == h.config.HeartbeatToken {
		h.serveHeartbeat(w, r)
		return
	}

	entry, ok := h.registry.Lookup(token)
	if !ok {
		http.Redirect(w, r, NotFoundPath, http.StatusFound)
		return
	}

	h.serveArchive(w, r, entry)
}

func (h *Handler) serveArchive(w http.ResponseWriter, r *http.Request, entry photozip.DirectoryEntry) {
	ctx := r.Context()

	sess, err := h.streamer.Open(ctx, entry)
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			slog.Warn("failed to clean up archiver", "session", sess.ID(), "err", closeErr)
		}
	}()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+archiveFilename+`"`)
	w.WriteHeader(http.StatusOK)

	stats, err := sess.Stream(ctx, newResponseSink(w))
	logStream(stats, err)

	if err != nil {
		// Headers are committed; aborting is the only way to tell the
		// client the archive is incomplete. The deferred Close runs first.
		panic(http.ErrAbortHandler)
	}
}

func (h *Handler) serveHeartbeat(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)

	err := h.heartbeat.Run(r.Context(), newResponseSink(w))
	slog.Debug("heartbeat stopped", "request_id", middleware.GetReqID(r.Context()), "reason", err)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := []byte(defaultIndexHTML)

	if h.config.IndexFile != "" {
		content, err := os.ReadFile(h.config.IndexFile)
		if err != nil {
			slog.Warn("failed to read index page, using built-in page", "file", h.config.IndexFile, "err", err)
		} else {
			page = content
		}
	}

	writeHTML(w, http.StatusOK, page)
}

func (h *Handler) handleNotFoundPage(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusOK, []byte(archiveNotFoundHTML))
}
