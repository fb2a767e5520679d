package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"postview/app/cache"
	"postview/app/components"
	"postview/app/controllers"
	"postview/app/graphql"
	"postview/app/graphql/mock"
	"postview/app/metrics"
	"postview/app/models"
	"postview/app/repositories"
	"postview/app/services"
	"postview/app/store"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	router   *mux.Router
	backend  *mock.Server
	comments *services.CommentService
	cookies  []*http.Cookie
}

func seedPosts() []models.Post {
	return []models.Post{
		{ID: "p1", Title: "Test Post", Body: "This is a test post", Comments: []models.Comment{}},
		{ID: "p2", Title: "Another Post", Body: "More words", Comments: []models.Comment{
			{ID: "c0", Content: "first!", Author: models.Author{ID: "a0", Name: "Zed", Email: "zed@example.com"}},
		}},
	}
}

func setupTestApp(t *testing.T) *testApp {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	m := metrics.New()

	backend := mock.NewServer(seedPosts()...)
	t.Cleanup(backend.Close)

	db, err := repositories.Open(repositories.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c, err := cache.New(cache.DefaultConfig(), m)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	api := graphql.NewClient(graphql.Options{Endpoint: backend.URL, Metrics: m, Logger: logger})
	posts := services.NewPostService(api, c, logger)
	comments := services.NewCommentService(api, c, services.CommentOptions{}, m, logger)
	s := store.New(repositories.NewBadgerStateRepository(db), logger)

	page := components.Connect(components.Bindings{
		Posts:    posts,
		Comments: comments,
		State:    s,
		Dispatch: s,
		Logger:   logger,
	})
	router := SetupRoutes(Options{
		Page:    controllers.NewPageController(page, nil, m, logger),
		Metrics: m,
		Logger:  logger,
	})
	return &testApp{router: router, backend: backend, comments: comments}
}

// do serves req, carrying the session cookie between calls
func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range a.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		a.cookies = cookies
	}
	return w
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest("GET", path, nil))
}

func (a *testApp) post(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

type apiResponse struct {
	Posts          []models.Post `json:"posts"`
	SelectedPostID string        `json:"selectedPostId"`
	SelectedPost   models.Post   `json:"selectedPost"`
}

func (a *testApp) props(t *testing.T) apiResponse {
	w := a.get("/api/posts")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var res apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestWebRoutes(t *testing.T) {
	app := setupTestApp(t)

	t.Run("GET / shows the index", func(t *testing.T) {
		w := app.get("/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `href="/posts"`)
		require.NotEmpty(t, app.cookies)
	})

	t.Run("GET /posts lists titles", func(t *testing.T) {
		w := app.get("/posts")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Test Post")
		assert.Contains(t, w.Body.String(), "Another Post")
		assert.NotContains(t, w.Body.String(), "Add Comment")
	})

	t.Run("posts are served from the cache after the first fetch", func(t *testing.T) {
		app.get("/posts")
		app.get("/posts")
		assert.Equal(t, 1, app.backend.CountOperation(graphql.OperationGetPosts))
	})

	t.Run("POST /posts/select then GET /posts shows the post", func(t *testing.T) {
		w := app.post("/posts/select", url.Values{"id": {"p2"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/posts", w.Header().Get("Location"))

		body := app.get("/posts").Body.String()
		assert.Contains(t, body, `<div class="title">Another Post</div>`)
		assert.Contains(t, body, `<div class="title">Comments</div>`)
		assert.Contains(t, body, "Zed")
		assert.Contains(t, body, "Add Comment")
	})

	t.Run("POST /posts/comments adds the comment after the round trip", func(t *testing.T) {
		w := app.post("/posts/comments", url.Values{
			"content":     {"nice"},
			"authorName":  {"Amy"},
			"authorEmail": {"amy@example.com"},
		})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		app.comments.Wait()

		body := app.get("/posts").Body.String()
		first := strings.Index(body, "first!")
		added := strings.Index(body, "nice")
		require.NotEqual(t, -1, first)
		require.NotEqual(t, -1, added)
		assert.Less(t, first, added)
		assert.Equal(t, 1, app.backend.CountOperation(graphql.OperationAddComment))
	})

	t.Run("POST /posts/navigate goes back to the index", func(t *testing.T) {
		w := app.post("/posts/navigate", url.Values{"url": {"/"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})
}

func TestAPIRoutes(t *testing.T) {
	app := setupTestApp(t)

	t.Run("GET /api/posts returns the props", func(t *testing.T) {
		res := app.props(t)
		require.Len(t, res.Posts, 2)
		assert.Equal(t, "p1", res.Posts[0].ID)
		assert.Equal(t, "Test Post", res.Posts[0].Title)
		assert.Equal(t, "", res.SelectedPostID)
	})

	t.Run("comment without email is dropped", func(t *testing.T) {
		app.post("/api/posts/select", url.Values{"id": {"p1"}})
		app.post("/api/posts/comments", url.Values{"content": {"anonymous"}})
		app.comments.Wait()

		res := app.props(t)
		assert.Equal(t, "p1", res.SelectedPostID)
		assert.Empty(t, res.SelectedPost.Comments)
		assert.Equal(t, 0, app.backend.CountOperation(graphql.OperationAddComment))
	})

	t.Run("unknown API route returns JSON 404", func(t *testing.T) {
		w := app.get("/api/unknown")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
	})
}

func TestFailingBackendRendersEmptyPage(t *testing.T) {
	app := setupTestApp(t)
	app.backend.SetFailing(true)

	w := app.get("/posts")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Test Post")
	assert.NotContains(t, w.Body.String(), "backend unavailable")

	res := app.props(t)
	assert.Empty(t, res.Posts)
}

func TestOperationalRoutes(t *testing.T) {
	app := setupTestApp(t)

	w := app.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	app.get("/posts")
	w = app.get("/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "postview_http_requests_total")
	assert.Contains(t, w.Body.String(), "postview_graphql_requests_total")
}
