package controllers

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"postview/app/components"
	"postview/app/metrics"
	"postview/app/middleware"
	"postview/app/models"
	"postview/app/ratelimit"

	"github.com/sirupsen/logrus"
)

// PostsURL is where the connected page is served
const PostsURL = "/posts"

// PageController serves the connected posts page and the form endpoints
// carrying its callbacks.
type PageController struct {
	page    *components.ConnectedPage
	limiter *ratelimit.MapLimiter
	metrics *metrics.Metrics
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewPageController creates a new PageController. A nil limiter disables rate limiting.
func NewPageController(page *components.ConnectedPage, limiter *ratelimit.MapLimiter, m *metrics.Metrics, logger logrus.FieldLogger) *PageController {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PageController{
		page:    page,
		limiter: limiter,
		metrics: m,
		logger:  logger.WithField("component", "page_controller"),
		now:     time.Now,
	}
}

// pageProps is the JSON form of a rendered page
type pageProps struct {
	Posts          []models.Post        `json:"posts"`
	SelectedPostID string               `json:"selectedPostId"`
	SelectedPost   models.Post          `json:"selectedPost"`
	Endpoints      components.Endpoints `json:"endpoints"`
}

// commentRequest is the JSON body accepted by Comment
type commentRequest struct {
	Content     string `json:"content"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail"`
}

// Index displays the index page
func (pc *PageController) Index(w http.ResponseWriter, r *http.Request) {
	if err := components.RenderIndex(w, PostsURL); err != nil {
		pc.sendError(w, r, "Template error: "+err.Error(), http.StatusInternalServerError)
	}
}

// Show renders the posts page for the visitor's session
func (pc *PageController) Show(w http.ResponseWriter, r *http.Request) {
	page := pc.page.Build(r.Context(), middleware.SessionKeyFrom(r.Context()))

	if middleware.IsAPIRequest(r) {
		posts := page.Posts
		if posts == nil {
			posts = []models.Post{}
		}
		pc.sendJSON(w, pageProps{
			Posts:          posts,
			SelectedPostID: page.SelectedPostID,
			SelectedPost:   page.SelectedPost(),
			Endpoints:      page.Endpoints,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.RenderDocument(w); err != nil {
		pc.sendError(w, r, "Template error: "+err.Error(), http.StatusInternalServerError)
	}
}

// Select handles a click on a post title
func (pc *PageController) Select(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		pc.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	pc.page.Callbacks(ctx, middleware.SessionKeyFrom(ctx)).Select(r.PostForm.Get("id"))

	http.Redirect(w, r, PostsURL, http.StatusSeeOther)
}

// Navigate handles the back button and redirects to the session's location
func (pc *PageController) Navigate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		pc.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	key := middleware.SessionKeyFrom(ctx)
	target := LocalPath(r.PostForm.Get("url"))
	pc.page.Callbacks(ctx, key).Navigate(target)

	location := pc.page.Location(ctx, key)
	if location == "" {
		location = target
	}
	http.Redirect(w, r, LocalPath(location), http.StatusSeeOther)
}

// Comment handles the comment form. The mutation runs in the background and
// the visitor is always sent back to the page.
func (pc *PageController) Comment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := middleware.SessionKeyFrom(ctx)

	if !pc.limiter.Allow(key, pc.now()) {
		pc.metrics.CommentSubmitted(metrics.OutcomeRateLimited)
		pc.logger.WithField("session", shortKey(key)).Warn("comment rate limited")
		if middleware.IsAPIRequest(r) {
			pc.sendError(w, r, "Too many comments, slow down", http.StatusTooManyRequests)
			return
		}
		http.Redirect(w, r, PostsURL, http.StatusSeeOther)
		return
	}

	var form components.CommentForm
	if isJSONBody(r) {
		var req commentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			pc.sendError(w, r, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		form = components.CommentForm(req)
	} else {
		if err := r.ParseForm(); err != nil {
			pc.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
			return
		}
		form = components.CommentFormFromValues(r.PostForm)
	}

	if !pc.page.Submit(ctx, key, form) {
		pc.metrics.CommentSubmitted(metrics.OutcomeIgnored)
		pc.logger.Debug("comment ignored, no post selected")
	}

	http.Redirect(w, r, PostsURL, http.StatusSeeOther)
}

// Health reports liveness
func (pc *PageController) Health(w http.ResponseWriter, r *http.Request) {
	pc.sendJSON(w, map[string]string{"status": "ok"})
}

// LocalPath returns raw when it is a path on this server, "/" otherwise
func LocalPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return components.IndexURL
	}
	return u.RequestURI()
}

// isJSONBody reports whether the request body is declared as JSON, parameters included
func isJSONBody(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func shortKey(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}

func (pc *PageController) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (pc *PageController) sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if middleware.IsAPIRequest(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": message})
	} else {
		http.Error(w, message, status)
	}
}
