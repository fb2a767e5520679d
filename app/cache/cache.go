package cache

import (
	"fmt"
	"sync"
	"time"

	"postview/app/metrics"
	"postview/app/models"

	"github.com/dgraph-io/ristretto/v2"
)

// Key prefixes for normalized entities
const (
	PostKeyPrefix    = "Post:"
	CommentKeyPrefix = "Comment:"
	AuthorKeyPrefix  = "Author:"

	// RootPostsKey holds the ordered post refs of the posts query
	RootPostsKey = "ROOT_QUERY.posts"
)

// Config sizes the underlying ristretto cache. Every entity costs 1.
type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	// TTL bounds how long a posts query result is served before it is fetched
	// again. Zero keeps it until evicted.
	TTL time.Duration
}

// DefaultConfig holds up to 100k entities and refetches posts every 30 seconds
func DefaultConfig() Config {
	return Config{NumCounters: 1e6, MaxCost: 1e5, BufferItems: 64, TTL: 30 * time.Second}
}

type postEntry struct {
	ID          string
	Title       string
	Body        string
	CommentRefs []string
}

type commentEntry struct {
	ID        string
	Content   string
	AuthorRef string
}

// Cache is a normalized store of query and mutation results keyed by
// typename and ID. Posts reference comments, comments reference authors.
type Cache struct {
	store   *ristretto.Cache[string, any]
	mutex   sync.RWMutex
	ttl     time.Duration
	metrics *metrics.Metrics
}

// New creates a new Cache
func New(cfg Config, m *metrics.Metrics) (*Cache, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 {
		ttl := cfg.TTL
		cfg = DefaultConfig()
		cfg.TTL = ttl
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = 64
	}
	store, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        cfg.BufferItems,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &Cache{store: store, ttl: cfg.TTL, metrics: m}, nil
}

// WritePosts stores the result of the posts query, replacing the root list
func (c *Cache) WritePosts(posts []models.Post) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	refs := make([]string, 0, len(posts))
	for _, post := range posts {
		refs = append(refs, c.writePost(post, true))
	}
	if c.ttl > 0 {
		c.store.SetWithTTL(RootPostsKey, refs, 1, c.ttl)
	} else {
		c.store.Set(RootPostsKey, refs, 1)
	}
	c.store.Wait()
}

// ReadPosts returns the cached posts query result. It misses when the query
// was never written or any referenced entity has been evicted.
func (c *Cache) ReadPosts() ([]models.Post, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	posts, ok := c.readPosts()
	c.metrics.CacheLookup(ok)
	return posts, ok
}

// ReadPost returns a single cached post
func (c *Cache) ReadPost(id string) (models.Post, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.readPost(PostKeyPrefix + id)
}

// MergePost merges a post returned by a mutation. Only the comment list is
// taken from the payload; title and body of a known post are kept.
func (c *Cache) MergePost(post models.Post) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.writePost(post, false)
	c.store.Wait()
}

// UpdatePost applies fn to the cached post id and merges the result, as one
// step. It reports false when the post is not cached.
func (c *Cache) UpdatePost(id string, fn func(models.Post) models.Post) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	post, ok := c.readPost(PostKeyPrefix + id)
	if !ok {
		return false
	}
	c.writePost(fn(post), false)
	c.store.Wait()
	return true
}

// Evict removes the root query so the next read misses
func (c *Cache) Evict() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.store.Del(RootPostsKey)
}

// Clear drops every entity
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.store.Clear()
}

// Close stops the cache's background goroutines
func (c *Cache) Close() {
	c.store.Close()
}

func (c *Cache) writePost(post models.Post, withFields bool) string {
	key := PostKeyPrefix + post.ID
	entry := postEntry{ID: post.ID, Title: post.Title, Body: post.Body}
	if !withFields {
		if existing, ok := c.store.Get(key); ok {
			if prev, ok := existing.(postEntry); ok {
				entry.Title = prev.Title
				entry.Body = prev.Body
			}
		}
	}

	entry.CommentRefs = make([]string, 0, len(post.Comments))
	for _, comment := range post.Comments {
		authorKey := AuthorKeyPrefix + comment.Author.ID
		c.store.Set(authorKey, comment.Author, 1)

		commentKey := CommentKeyPrefix + comment.ID
		c.store.Set(commentKey, commentEntry{
			ID:        comment.ID,
			Content:   comment.Content,
			AuthorRef: authorKey,
		}, 1)
		entry.CommentRefs = append(entry.CommentRefs, commentKey)
	}
	c.store.Set(key, entry, 1)
	return key
}

func (c *Cache) readPosts() ([]models.Post, bool) {
	value, ok := c.store.Get(RootPostsKey)
	if !ok {
		return nil, false
	}
	refs, ok := value.([]string)
	if !ok {
		return nil, false
	}

	posts := make([]models.Post, 0, len(refs))
	for _, ref := range refs {
		post, ok := c.readPost(ref)
		if !ok {
			return nil, false
		}
		posts = append(posts, post)
	}
	return posts, true
}

func (c *Cache) readPost(key string) (models.Post, bool) {
	value, ok := c.store.Get(key)
	if !ok {
		return models.Post{}, false
	}
	entry, ok := value.(postEntry)
	if !ok {
		return models.Post{}, false
	}

	post := models.Post{
		ID:       entry.ID,
		Title:    entry.Title,
		Body:     entry.Body,
		Comments: make([]models.Comment, 0, len(entry.CommentRefs)),
	}
	for _, ref := range entry.CommentRefs {
		comment, ok := c.readComment(ref)
		if !ok {
			return models.Post{}, false
		}
		post.Comments = append(post.Comments, comment)
	}
	return post, true
}

func (c *Cache) readComment(key string) (models.Comment, bool) {
	value, ok := c.store.Get(key)
	if !ok {
		return models.Comment{}, false
	}
	entry, ok := value.(commentEntry)
	if !ok {
		return models.Comment{}, false
	}
	authorValue, ok := c.store.Get(entry.AuthorRef)
	if !ok {
		return models.Comment{}, false
	}
	author, ok := authorValue.(models.Author)
	if !ok {
		return models.Comment{}, false
	}
	return models.Comment{ID: entry.ID, Content: entry.Content, Author: author}, true
}
