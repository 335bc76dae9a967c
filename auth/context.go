// api/auth/context.go
package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/mapcanvas/atlas/api/cache"
	"github.com/mapcanvas/atlas/api/model"
)

const requestContextKey = "atlasRequestContext"

// Query flags callers use to opt into extra data. All three are gated
// by the policy engine.
const (
	IncludeInvisibleParam   = "include_invisible"
	IncludePrivateParam     = "include_private"
	IncludeSubmissionsParam = "include_submissions"
)

// RequestContext carries everything the gate resolved for one request:
// the principal pair, the addressed dataset, the cache partition
// token, the path-derived identity claims, and the request's cache
// write buffer. It is populated once at the gate and passed down
// explicitly; nothing downstream re-runs authentication.
type RequestContext struct {
	Principal  *Principal
	Dataset    *model.DataSet
	GroupToken string

	// Claims are the identity assertions made by the request path,
	// keyed by route parameter name.
	Claims map[string]string

	Buffer *cache.Buffer

	IncludeInvisible   bool
	IncludePrivate     bool
	IncludeSubmissions bool
}

// Subject is a nil-safe accessor for the resolved subject.
func (rc *RequestContext) Subject() *Subject {
	if rc == nil || rc.Principal == nil {
		return nil
	}
	return rc.Principal.Subject
}

// SetRequestContext attaches the resolved context to the gin context.
func SetRequestContext(c *gin.Context, rc *RequestContext) {
	c.Set(requestContextKey, rc)
}

// GetRequestContext returns the resolved context, or nil when the
// request never passed the gate.
func GetRequestContext(c *gin.Context) *RequestContext {
	value, exists := c.Get(requestContextKey)
	if !exists {
		return nil
	}
	rc, _ := value.(*RequestContext)
	return rc
}
