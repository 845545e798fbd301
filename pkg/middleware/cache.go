package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/dkozyrev/softvault/pkg/cache"
)

const (
	defaultCacheTTL     = 30 * time.Second
	defaultMaxBodyBytes = 1 << 20
	keyBuilderGrow      = 64
)

// CacheConfig configures the read-path response cache. Browse, search and
// autocomplete answers change only when the catalog does, so short TTLs
// take most of the repeated-query load off the database.
type CacheConfig struct {
	Cache *appcache.Cache
	TTL   time.Duration

	// Skipper returns true to bypass the cache for a request.
	Skipper func(*gin.Context) bool

	// BypassHeader skips the cache when present on the request.
	BypassHeader string

	// MaxBodyBytes caps cached body size; larger responses pass through
	// uncached.
	MaxBodyBytes int
}

// DefaultCacheConfig returns the settings used for catalog read endpoints.
func DefaultCacheConfig(c *appcache.Cache) CacheConfig {
	return CacheConfig{
		Cache:        c,
		TTL:          defaultCacheTTL,
		BypassHeader: "X-Cache-Bypass",
		MaxBodyBytes: defaultMaxBodyBytes,
	}
}

// CacheMiddleware caches successful GET responses in the shared KV store.
// Cache failures never fail the request; entries carry an ETag so clients
// get 304s on revalidation.
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	if cfg.Cache == nil {
		panic("CacheMiddleware: Cache cannot be nil")
	}

	if cfg.TTL <= 0 {
		cfg.TTL = defaultCacheTTL
	}

	if cfg.BypassHeader == "" {
		cfg.BypassHeader = "X-Cache-Bypass"
	}

	return func(c *gin.Context) {
		if shouldBypass(c, cfg) {
			c.Next()
			return
		}

		key := buildCacheKey(c)
		if serveFromCache(c, cfg, key) {
			return
		}

		bw := &bodyCaptureWriter{ResponseWriter: c.Writer, max: cfg.MaxBodyBytes}
		c.Writer = bw
		c.Next()
		storeResponse(c, cfg, key, bw)
	}
}

type responseCacheEntry struct {
	Status   int               `json:"s"`
	Header   map[string]string `json:"h,omitempty"`
	Body     []byte            `json:"b,omitempty"`
	ETag     string            `json:"e,omitempty"`
	StoredAt int64             `json:"t"`
}

// buildCacheKey hashes method, caller role, route and sorted query into a
// short key. The role is part of the key because moderator views include
// rows hidden from regular users.
func buildCacheKey(c *gin.Context) string {
	var b strings.Builder
	b.Grow(keyBuilderGrow)

	b.WriteString(c.Request.Method)
	b.WriteByte(':')
	b.WriteString(GetRole(c).String())
	b.WriteByte(':')

	full := c.FullPath()
	if full == "" {
		full = c.Request.URL.Path
	}

	b.WriteString(full)

	if q := c.Request.URL.Query(); len(q) > 0 {
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}

		sort.Strings(keys)
		b.WriteByte('?')

		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}

			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(strings.Join(q[k], ","))
		}
	}

	return fmt.Sprintf("rc:%x", xxhash.Sum64String(b.String()))
}

type bodyCaptureWriter struct {
	gin.ResponseWriter

	buf       bytes.Buffer
	max       int
	truncated bool
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	if w.truncated {
		return w.ResponseWriter.Write(b)
	}

	remain := w.max - w.buf.Len()
	if len(b) > remain {
		w.truncated = true
	} else {
		w.buf.Write(b)
	}

	return w.ResponseWriter.Write(b)
}

func shouldBypass(c *gin.Context, cfg CacheConfig) bool {
	if c.Request.Method != http.MethodGet {
		return true
	}

	if cfg.Skipper != nil && cfg.Skipper(c) {
		return true
	}

	return c.GetHeader(cfg.BypassHeader) != ""
}

func serveFromCache(c *gin.Context, cfg CacheConfig, key string) bool {
	entry, err := appcache.Get[responseCacheEntry](c.Request.Context(), cfg.Cache, key)
	if err != nil {
		return false
	}

	h := c.Writer.Header()
	for k, v := range entry.Header {
		h.Set(k, v)
	}

	if entry.ETag != "" {
		h.Set("ETag", entry.ETag)
	}

	h.Set("Age", fmt.Sprintf("%.0f", time.Since(time.Unix(0, entry.StoredAt)).Seconds()))
	h.Set("X-Cache", "HIT")

	if entry.ETag != "" && c.GetHeader("If-None-Match") == entry.ETag {
		c.Status(http.StatusNotModified)
		c.Abort()

		return true
	}

	c.Status(entry.Status)
	_, _ = c.Writer.Write(entry.Body)
	c.Abort()

	return true
}

func storeResponse(c *gin.Context, cfg CacheConfig, key string, bw *bodyCaptureWriter) {
	status := c.Writer.Status()
	if status != http.StatusOK || bw.truncated {
		return
	}

	body := bw.buf.Bytes()
	hdr := make(map[string]string)

	for k, v := range c.Writer.Header() {
		if len(v) > 0 {
			hdr[k] = v[0]
		}
	}

	etag := c.Writer.Header().Get("ETag")
	if etag == "" {
		etag = fmt.Sprintf("%q", fmt.Sprintf("%x", xxhash.Sum64(body)))
		c.Writer.Header().Set("ETag", etag)
		hdr["ETag"] = etag
	}

	entry := responseCacheEntry{
		Status:   status,
		Header:   hdr,
		Body:     body,
		ETag:     etag,
		StoredAt: time.Now().UnixNano(),
	}

	go func(ctx context.Context) {
		_ = appcache.Set(ctx, cfg.Cache, key, entry, cfg.TTL)
	}(context.WithoutCancel(c.Request.Context()))
}
