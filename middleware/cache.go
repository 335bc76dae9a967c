// api/middleware/cache.go

package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mapcanvas/atlas/api/auth"
	"github.com/mapcanvas/atlas/api/cache"
	logger "github.com/mapcanvas/atlas/api/logging"
)

// ResponseCache serves safe requests from the tracked response cache
// and captures fresh responses into the request's write buffer. It
// runs after the gate: the cache key is partitioned by the group token
// the gate resolved, so two callers with different visibility never
// share an entry.
//
// Whatever happens, the buffer is flushed exactly once, here, when the
// request is done. Responses carry Cache-Control: no-cache because the
// server invalidates eagerly and clients must not cache on their own.
func ResponseCache(engine *cache.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := auth.GetRequestContext(c)
		if rc == nil {
			c.Next()
			return
		}

		c.Header("Cache-Control", "no-cache")

		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead || !cacheable(c) {
			c.Next()
			rc.Buffer.Flush(c.Request.Context())
			return
		}

		path := c.Request.URL.Path
		key := cache.ResponseKey(path, c.GetHeader("Accept"), c.Request.URL.RawQuery, rc.GroupToken)
		metakey := cache.Metakey(path)

		if entry := engine.Lookup(c.Request.Context(), key, metakey); entry != nil {
			for name, value := range entry.Headers {
				c.Header(name, value)
			}
			c.Header("X-Cache", "HIT")
			c.Data(entry.Status, entry.Headers["Content-Type"], entry.Body)
			c.Abort()
			rc.Buffer.Flush(c.Request.Context())
			return
		}

		c.Header("X-Cache", "MISS")
		writer := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		// Only plain successes are cacheable; errors and partial
		// responses are always recomputed.
		if writer.Status() == http.StatusOK {
			rc.Buffer.StageEntry(key, metakey, &cache.Entry{
				Status:  writer.Status(),
				Headers: map[string]string{"Content-Type": writer.Header().Get("Content-Type")},
				Body:    writer.body.Bytes(),
			})
			logger.Debug("Staged response for caching",
				zap.String("key", key),
				zap.Int("bytes", writer.body.Len()))
		}

		rc.Buffer.Flush(c.Request.Context())
	}
}

// cacheable reports whether the matched route serves shareable data.
// Owner-only surfaces — dataset lifecycle lists, user profiles, and
// the credential and metadata collections — answer differently per
// caller and are staged here before the handlers' own access checks
// run, so they are never cached at all.
func cacheable(c *gin.Context) bool {
	if c.Param("dataset_slug") == "" {
		return false
	}
	switch c.Param("resource") {
	case "keys", "origins", "groups", "metadata":
		return false
	}
	return true
}

// captureWriter tees the response body so it can be cached after the
// handler has written it.
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
