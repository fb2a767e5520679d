package routes

import (
	"encoding/json"
	"net/http"
	"strings"

	"postview/app/controllers"
	"postview/app/metrics"
	"postview/app/middleware"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Options are the handlers and settings the router is built from
type Options struct {
	Page          *controllers.PageController
	Metrics       *metrics.Metrics
	Logger        logrus.FieldLogger
	SessionCookie string
	SecureCookie  bool
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(opts Options) *mux.Router {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger(logger, opts.Metrics))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Session(opts.SessionCookie, opts.SecureCookie))

	router.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
	router.HandleFunc("/healthz", opts.Page.Health).Methods("GET")

	// Web routes
	router.HandleFunc("/", opts.Page.Index).Methods("GET")
	registerPostRoutes(router.PathPrefix("/posts").Subrouter(), opts.Page)

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	registerPostRoutes(api.PathPrefix("/posts").Subrouter(), opts.Page)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Not found"})
			return
		}
		http.NotFound(w, r)
	})

	return router
}

func registerPostRoutes(posts *mux.Router, page *controllers.PageController) {
	posts.HandleFunc("", page.Show).Methods("GET")
	posts.HandleFunc("/select", page.Select).Methods("POST")
	posts.HandleFunc("/navigate", page.Navigate).Methods("POST")
	posts.HandleFunc("/comments", page.Comment).Methods("POST")
}
