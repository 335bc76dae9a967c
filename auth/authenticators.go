// api/auth/authenticators.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"

	"github.com/mapcanvas/atlas/api/model"
)

// KeyHeader is the request header carrying a dataset API key.
const KeyHeader = "X-Atlas-Key"

// SessionCookie is the cookie carrying a session token.
const SessionCookie = "atlas_session"

// UserStore is what subject authenticators need from the user storage
// layer.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

// SessionStore resolves a session token to the user that opened it.
// Unknown tokens return (nil, nil).
type SessionStore interface {
	UserForSession(ctx context.Context, token string) (*model.User, error)
}

// BasicAuthenticator authenticates subjects from HTTP basic
// credentials.
type BasicAuthenticator struct {
	Users UserStore
}

func (a *BasicAuthenticator) Name() string { return "basic" }

func (a *BasicAuthenticator) AuthenticateSubject(ctx context.Context, r *http.Request) (*model.User, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, nil
	}
	user, err := a.Users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("basic credentials rejected for %q: %w", username, err)
	}
	return user, nil
}

// AtlasClaims are the JWT claims issued for bearer-token subjects.
// Groups maps dataset ids to the group names the user holds there.
type AtlasClaims struct {
	jwt.StandardClaims
	Username string              `json:"username"`
	Groups   map[string][]string `json:"groups,omitempty"`
	Admin    bool                `json:"admin,omitempty"`
}

// TokenAuthenticator authenticates subjects from a bearer JWT signed
// with the shared HMAC secret.
type TokenAuthenticator struct {
	Secret []byte
}

func (a *TokenAuthenticator) Name() string { return "bearer" }

func (a *TokenAuthenticator) AuthenticateSubject(ctx context.Context, r *http.Request) (*model.User, error) {
	header := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, nil
	}

	claims := &AtlasClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid bearer token")
	}

	user := &model.User{
		ID:       claims.Subject,
		Username: claims.Username,
		IsAdmin:  claims.Admin,
	}
	for datasetID, names := range claims.Groups {
		for _, name := range names {
			user.Groups = append(user.Groups, model.GroupMembership{DataSetID: datasetID, Name: name})
		}
	}
	return user, nil
}

// SessionAuthenticator authenticates subjects from the session cookie.
type SessionAuthenticator struct {
	Sessions SessionStore
}

func (a *SessionAuthenticator) Name() string { return "session" }

func (a *SessionAuthenticator) AuthenticateSubject(ctx context.Context, r *http.Request) (*model.User, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	return a.Sessions.UserForSession(ctx, cookie.Value)
}

// APIKeyAuthenticator authenticates clients from the dataset API key
// header. A present key that does not belong to the addressed dataset
// is a rejection, not an absence: the caller asserted an identity and
// failed to prove it.
type APIKeyAuthenticator struct{}

func (a *APIKeyAuthenticator) Name() string { return "apikey" }

func (a *APIKeyAuthenticator) AuthenticateClient(ctx context.Context, r *http.Request, ds *model.DataSet) (*Client, error) {
	value := r.Header.Get(KeyHeader)
	if value == "" {
		return nil, nil
	}
	if ds == nil {
		return nil, fmt.Errorf("api key presented outside any dataset scope")
	}

	key := ds.KeyValued(value)
	if key == nil {
		return nil, fmt.Errorf("unknown api key for dataset %s", ds.Slug)
	}

	return &Client{
		Kind:        ClientKey,
		ID:          key.ID,
		DataSetID:   ds.ID,
		Permissions: key.Permissions,
	}, nil
}

// OriginAuthenticator authenticates clients from the Origin header
// against the dataset's trusted origins. Browsers attach Origin to
// most requests, so a non-matching value means no client was asserted
// rather than a rejection.
type OriginAuthenticator struct{}

func (a *OriginAuthenticator) Name() string { return "origin" }

func (a *OriginAuthenticator) AuthenticateClient(ctx context.Context, r *http.Request, ds *model.DataSet) (*Client, error) {
	value := r.Header.Get("Origin")
	if value == "" || ds == nil {
		return nil, nil
	}

	origin := ds.OriginMatching(value)
	if origin == nil {
		return nil, nil
	}

	return &Client{
		Kind:        ClientOrigin,
		ID:          origin.ID,
		DataSetID:   ds.ID,
		Permissions: origin.Permissions,
	}, nil
}
