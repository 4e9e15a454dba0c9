package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/assetkit/pkg/httpserver"
	"github.com/dmitrymomot/assetkit/pkg/logger"
	"github.com/dmitrymomot/assetkit/pkg/media"
	"github.com/dmitrymomot/assetkit/pkg/requestid"
)

// MediaService is the part of media.Manager the API drives.
type MediaService interface {
	Ingest(ctx context.Context, in media.Upload) (*media.Media, error)
	Get(ctx context.Context, id uuid.UUID) (*media.Media, error)
	List(ctx context.Context, scope, ownerID string) ([]*media.Media, error)
	SetPosition(ctx context.Context, id uuid.UUID, position int) (*media.Media, error)
	Attach(ctx context.Context, id uuid.UUID, scope string, ownerID *string) (*media.Media, error)
	Delete(ctx context.Context, id uuid.UUID) error
	URL(path string) string
}

// Sanitizer cleans untrusted HTML.
type Sanitizer interface {
	Sanitize(raw string) string
}

const (
	defaultMaxUpload = 20 << 20
	defaultMaxHTML   = 1 << 20
	// multipart framing and the text fields around the file
	formOverhead = 64 << 10
)

// API serves the HTTP endpoints.
type API struct {
	media     MediaService
	sanitizer Sanitizer
	log       *slog.Logger
	maxUpload int64
	maxHTML   int64
	ready     []httpserver.Check
}

// Option configures the API.
type Option func(*API)

// WithLogger sets the logger for access and error logs.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) { a.log = l }
}

// WithMaxUploadSize caps the size of uploaded files in bytes.
func WithMaxUploadSize(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxUpload = n
		}
	}
}

// WithMaxHTMLSize caps the size of /sanitize request bodies in bytes.
func WithMaxHTMLSize(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxHTML = n
		}
	}
}

// WithReadinessChecks registers the checks behind /health/ready.
func WithReadinessChecks(checks ...httpserver.Check) Option {
	return func(a *API) { a.ready = append(a.ready, checks...) }
}

// New builds the API over svc and san.
func New(svc MediaService, san Sanitizer, opts ...Option) *API {
	a := &API{
		media:     svc,
		sanitizer: san,
		maxUpload: defaultMaxUpload,
		maxHTML:   defaultMaxHTML,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = logger.OrDiscard(a.log).With(logger.Component("httpapi"))
	return a
}

// Handler returns the router with all routes and middleware mounted.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP, requestid.Middleware, accessLog(a.log), middleware.Recoverer)

	r.Get("/health/live", httpserver.HealthCheckHandler(a.log))
	r.Get("/health/ready", httpserver.HealthCheckHandler(a.log, a.ready...))

	r.Route("/media", func(r chi.Router) {
		r.With(middleware.RequestSize(a.maxUpload+formOverhead)).Post("/", wrap(a.log, a.upload))
		r.Get("/", wrap(a.log, a.list))
		r.Get("/{id}", wrap(a.log, a.get))
		r.Patch("/{id}", wrap(a.log, a.setPosition))
		r.Delete("/{id}", wrap(a.log, a.delete))
		r.Post("/{id}/attach", wrap(a.log, a.attach))
	})
	r.Post("/sanitize", wrap(a.log, a.sanitize))

	r.NotFound(wrap(a.log, func(*http.Request) Response { return Error(ErrNotFound) }))
	r.MethodNotAllowed(wrap(a.log, func(*http.Request) Response {
		return Error(HTTPError{Code: http.StatusMethodNotAllowed, Key: "method_not_allowed"})
	}))
	return r
}
