// api/auth/verify.go
package auth

import (
	"context"

	"github.com/mapcanvas/atlas/api/cache"
	atlas_errors "github.com/mapcanvas/atlas/api/errors"
)

// Verifier cross-checks the identity a request path asserts against
// the object actually fetched. A valid object id reachable under the
// wrong owner or dataset segment must never be served: a caller with
// access to their own resources could otherwise read someone else's by
// guessing ids.
type Verifier struct {
	instances *cache.InstanceCache
}

func NewVerifier(instances *cache.InstanceCache) *Verifier {
	return &Verifier{instances: instances}
}

type visibility interface {
	IsVisible() bool
}

// Verify checks the fetched entity against the path-derived claims.
// Invisible entities additionally require the caller to have asked for
// invisible resources explicitly; ownership alone does not imply
// intent to view hidden drafts. Identity mismatches surface as
// not-found so existence is never confirmed.
//
// Identifying attributes come from the instance-attribute cache when
// present; the backfill write is staged on buf.
func (v *Verifier) Verify(ctx context.Context, ent cache.Describable, claims map[string]string, includeInvisible bool, buf *cache.Buffer) error {
	if vis, ok := ent.(visibility); ok && !vis.IsVisible() && !includeInvisible {
		return atlas_errors.ErrInvisibleNotRequested
	}

	attrs := v.instances.Attributes(ctx, ent, buf)
	for claim, claimed := range claims {
		if actual, ok := attrs[claim]; ok && actual != claimed {
			return atlas_errors.ErrIdentityMismatch
		}
	}
	return nil
}
