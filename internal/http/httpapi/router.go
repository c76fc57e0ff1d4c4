package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"tryon/internal/http/handlers"
	"tryon/internal/infra"
	"tryon/internal/middleware"
)

// Options carries the cross-cutting settings applied to every route.
type Options struct {
	Logger             infra.Logger
	CORSAllowedOrigins []string
	DefaultLocale      string
	CountryLookup      middleware.CountryLookup
	// RateLimitPerMinute applies to POST /v1/tryon only; <= 0 disables it.
	RateLimitPerMinute int
	// TrustProxyHeaders lets True-Client-IP, X-Real-IP and X-Forwarded-For
	// replace RemoteAddr. Enable it only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.Logger(opts.Logger),
		middleware.Recoverer(opts.Logger),
		middleware.CORS(opts.CORSAllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusNotFound, "not_found", http.StatusText(http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", http.StatusText(http.StatusMethodNotAllowed))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Route("/ratios", func(r chi.Router) {
			r.Get("/", app.Ratios)
			r.Get("/infer", app.InferRatio)
		})

		r.Route("/credentials", func(r chi.Router) {
			r.Get("/", app.CredentialStatus)
			r.Put("/", app.SaveCredential)
		})

		r.With(middleware.RateLimit(middleware.NewRateLimiter(opts.RateLimitPerMinute))).
			Post("/tryon", app.TryOn)
	})

	return r
}
