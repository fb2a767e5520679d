package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"postview/app/cache"
	"postview/app/components"
	"postview/app/config"
	"postview/app/controllers"
	"postview/app/graphql"
	"postview/app/metrics"
	"postview/app/ratelimit"
	"postview/app/repositories"
	"postview/app/routes"
	"postview/app/services"
	"postview/app/store"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// App holds every long-lived component of the blog page service
type App struct {
	cfg      *config.Config
	logger   logrus.FieldLogger
	db       *badger.DB
	cache    *cache.Cache
	metrics  *metrics.Metrics
	posts    *services.PostService
	comments *services.CommentService
	handler  http.Handler
}

// NewApp wires the state store, cache, GraphQL client and router from cfg
func NewApp(cfg *config.Config, logger logrus.FieldLogger) (*App, error) {
	m := metrics.New()

	db, err := repositories.Open(repositories.Options{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	c, err := cache.New(cache.Config{
		NumCounters: cfg.Cache.NumCounters,
		MaxCost:     cfg.Cache.MaxCost,
		BufferItems: cfg.Cache.BufferItems,
		TTL:         cfg.Cache.TTL,
	}, m)
	if err != nil {
		db.Close()
		return nil, err
	}

	api := graphql.NewClient(graphql.Options{
		Endpoint: cfg.GraphQL.Endpoint,
		Timeout:  cfg.GraphQL.Timeout,
		Breaker: graphql.BreakerSettings{
			MaxRequests:  cfg.GraphQL.Breaker.MaxRequests,
			Interval:     cfg.GraphQL.Breaker.Interval,
			Timeout:      cfg.GraphQL.Breaker.Timeout,
			MinRequests:  cfg.GraphQL.Breaker.MinRequests,
			FailureRatio: cfg.GraphQL.Breaker.FailureRatio,
		},
		Metrics: m,
		Logger:  logger,
	})

	posts := services.NewPostService(api, c, logger)
	comments := services.NewCommentService(api, c, services.CommentOptions{
		Optimistic: cfg.GraphQL.OptimisticComments,
	}, m, logger)
	s := store.New(repositories.NewBadgerStateRepository(db), logger)

	page := components.Connect(components.Bindings{
		Posts:    posts,
		Comments: comments,
		State:    s,
		Dispatch: s,
		Logger:   logger,
	})
	limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)

	handler := routes.SetupRoutes(routes.Options{
		Page:          controllers.NewPageController(page, limiter, m, logger),
		Metrics:       m,
		Logger:        logger,
		SessionCookie: cfg.Server.SessionCookie,
		SecureCookie:  cfg.Server.SecureCookie,
	})

	return &App{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		cache:    c,
		metrics:  m,
		posts:    posts,
		comments: comments,
		handler:  handler,
	}, nil
}

// Handler returns the HTTP handler serving the page
func (a *App) Handler() http.Handler {
	return a.handler
}

// Warm fills the cache with the posts collection. Failure is logged only.
func (a *App) Warm(ctx context.Context) {
	if _, err := a.posts.Refresh(ctx); err != nil {
		a.logger.WithError(err).Warn("cache warm-up failed")
	}
}

// Serve accepts connections on ln until ctx is done, then shuts down and
// waits for background comment submissions.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("addr", ln.Addr().String()).Info("serving blog page")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	a.comments.Wait()
	a.logger.Info("server stopped")
	return nil
}

// Close releases the cache and the state store
func (a *App) Close() error {
	a.cache.Close()
	return a.db.Close()
}
