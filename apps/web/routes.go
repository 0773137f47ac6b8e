package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	genreshandler "github.com/zenGate-Global/local-library/domains/genres/be/handler"
	genresservice "github.com/zenGate-Global/local-library/domains/genres/be/service"
	platformlogging "github.com/zenGate-Global/local-library/platform/go/logging"
	platformmiddleware "github.com/zenGate-Global/local-library/platform/go/middleware"
	"github.com/zenGate-Global/local-library/platform/go/render"
	"github.com/zenGate-Global/local-library/platform/go/weberrors"
)

// homePage is the data of the catalog index template.
type homePage struct {
	Title  string
	Counts genresservice.Counts
}

type routerDeps struct {
	logger         *zap.Logger
	genres         genresservice.Service
	pages          *render.Renderer
	development    bool
	requestTimeout time.Duration
	// trustProxy honours X-Forwarded-For style headers; only set it behind a proxy that overwrites them.
	trustProxy bool
	// limiter is optional; requests are not throttled when nil.
	limiter platformmiddleware.RateLimiter
	// ready reports whether backing services are reachable.
	ready func(ctx context.Context) error
}

func newRouter(deps routerDeps) http.Handler {
	errs := weberrors.NewHandler(deps.pages, deps.logger, deps.development)
	genreHTTPHandler := genreshandler.New(deps.genres, deps.pages, errs, deps.logger)

	rootRouter := chi.NewRouter()

	rootRouter.Use(chimw.RequestID)
	if deps.trustProxy {
		rootRouter.Use(chimw.RealIP)
	}
	rootRouter.Use(chimw.Recoverer)
	if deps.requestTimeout > 0 {
		rootRouter.Use(chimw.Timeout(deps.requestTimeout))
	}
	rootRouter.Use(
		chimw.Compress(5),
		platformlogging.RequestLogger(deps.logger),
		platformmiddleware.SecurityHeaders(),
	)
	rootRouter.NotFound(errs.NotFoundHandler())

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.ready != nil {
			if err := deps.ready(r.Context()); err != nil {
				platformlogging.FromRequest(r, deps.logger).Warn("readiness check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	// Probes stay outside the limiter.
	rootRouter.Group(func(site chi.Router) {
		if deps.limiter != nil {
			site.Use(platformmiddleware.RateLimit(deps.limiter, deps.logger))
		}

		site.Handle("/public/*", render.Static())

		site.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/catalog", http.StatusFound)
		})

		site.Route("/users", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("Respond with a resource"))
			})
			r.Get("/cool", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("You're so cool, i love that."))
			})
		})

		site.Route("/catalog", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				counts, err := deps.genres.Counts(r.Context())
				if err != nil {
					errs.Handle(w, r, err)
					return
				}
				page := homePage{Title: "Local Library Home", Counts: counts}
				if err := deps.pages.Render(w, http.StatusOK, "index", page); err != nil {
					errs.Handle(w, r, err)
				}
			})
			genreHTTPHandler.Routes(r)
		})
	})

	return rootRouter
}
