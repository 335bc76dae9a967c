// api/auth/principal.go
package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
)

// ClientKind says how a client application authenticated.
type ClientKind string

const (
	ClientKey    ClientKind = "key"
	ClientOrigin ClientKind = "origin"
)

// Subject is an authenticated end user.
type Subject struct {
	User *model.User
}

func (s *Subject) ID() string       { return s.User.ID }
func (s *Subject) Username() string { return s.User.Username }

// IsOwnerOf reports whether the subject owns the dataset.
func (s *Subject) IsOwnerOf(ds *model.DataSet) bool {
	return s != nil && ds != nil && s.User.ID == ds.OwnerID
}

// Client is an authenticated application: an API key or a trusted web
// origin, always scoped to a single dataset.
type Client struct {
	Kind        ClientKind
	ID          string
	DataSetID   string
	Permissions []model.PermissionRule
}

// Principal is the pair of identities resolved for one request. A
// request may carry a subject, a client, both, or neither; the two are
// resolved independently.
type Principal struct {
	Subject *Subject
	Client  *Client
}

// IsAnonymous reports whether neither identity is present.
func (p *Principal) IsAnonymous() bool {
	return p.Subject == nil && p.Client == nil
}

// SubjectAuthenticator attempts to authenticate the end user behind a
// request. Returning (nil, nil) means the authenticator did not find a
// credential it handles.
type SubjectAuthenticator interface {
	Name() string
	AuthenticateSubject(ctx context.Context, r *http.Request) (*model.User, error)
}

// ClientAuthenticator attempts to authenticate the client application
// behind a request, against the dataset the request addresses.
// Returning (nil, nil) means no client credential was asserted.
// Returning ErrAuthenticationRejected means a credential was asserted
// and is invalid.
type ClientAuthenticator interface {
	Name() string
	AuthenticateClient(ctx context.Context, r *http.Request, ds *model.DataSet) (*Client, error)
}

// Resolver runs the two authentication pipelines. Subject resolution
// is lenient: the first authenticator to succeed wins and every
// failure is silent, so a request with no (or bad) user credentials
// simply proceeds anonymously. Client resolution is strict: a rejected
// client credential fails the whole request.
//
// The asymmetry is deliberate-looking in the product but unconfirmed:
// it protects application credentials while staying forgiving about
// user logins. Preserved as-is pending product review.
type Resolver struct {
	subjectAuthenticators []SubjectAuthenticator
	clientAuthenticators  []ClientAuthenticator
}

func NewResolver(subjects []SubjectAuthenticator, clients []ClientAuthenticator) *Resolver {
	return &Resolver{
		subjectAuthenticators: subjects,
		clientAuthenticators:  clients,
	}
}

// Resolve runs both pipelines once. The caller stores the result in
// the request context; nothing here re-runs per access.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request, ds *model.DataSet) (*Principal, error) {
	principal := &Principal{}

	for _, authn := range r.subjectAuthenticators {
		user, err := authn.AuthenticateSubject(ctx, req)
		if err != nil {
			logger.Debug("Subject authenticator failed, continuing anonymously",
				zap.String("authenticator", authn.Name()), zap.Error(err))
			continue
		}
		if user != nil {
			principal.Subject = &Subject{User: user}
			break
		}
	}

	for _, authn := range r.clientAuthenticators {
		client, err := authn.AuthenticateClient(ctx, req, ds)
		if err != nil {
			logger.Warn("Client authentication rejected",
				zap.String("authenticator", authn.Name()), zap.Error(err))
			return nil, atlas_errors.ErrAuthenticationRejected
		}
		if client != nil {
			principal.Client = client
			break
		}
	}

	return principal, nil
}
