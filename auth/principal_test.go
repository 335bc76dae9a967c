// api/auth/principal_test.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	"github.com/mapcanvas/atlas/api/model"
)

type stubSubjectAuthenticator struct {
	user *model.User
	err  error
}

func (a *stubSubjectAuthenticator) Name() string { return "stub-subject" }

func (a *stubSubjectAuthenticator) AuthenticateSubject(ctx context.Context, r *http.Request) (*model.User, error) {
	return a.user, a.err
}

type stubClientAuthenticator struct {
	client *Client
	err    error
}

func (a *stubClientAuthenticator) Name() string { return "stub-client" }

func (a *stubClientAuthenticator) AuthenticateClient(ctx context.Context, r *http.Request, ds *model.DataSet) (*Client, error) {
	return a.client, a.err
}

func TestResolveSubjectFailureIsAnonymous(t *testing.T) {
	resolver := NewResolver(
		[]SubjectAuthenticator{&stubSubjectAuthenticator{err: errors.New("bad credentials")}},
		nil,
	)

	principal, err := resolver.Resolve(context.Background(), httptest.NewRequest("GET", "/", nil), nil)
	require.NoError(t, err)
	assert.True(t, principal.IsAnonymous())
}

func TestResolveFirstSubjectWins(t *testing.T) {
	resolver := NewResolver(
		[]SubjectAuthenticator{
			&stubSubjectAuthenticator{},
			&stubSubjectAuthenticator{user: &model.User{ID: "u1", Username: "demo"}},
			&stubSubjectAuthenticator{user: &model.User{ID: "u2", Username: "other"}},
		},
		nil,
	)

	principal, err := resolver.Resolve(context.Background(), httptest.NewRequest("GET", "/", nil), nil)
	require.NoError(t, err)
	require.NotNil(t, principal.Subject)
	assert.Equal(t, "demo", principal.Subject.Username())
}

func TestResolveClientRejectionFailsTheRequest(t *testing.T) {
	resolver := NewResolver(
		[]SubjectAuthenticator{&stubSubjectAuthenticator{user: &model.User{ID: "u1"}}},
		[]ClientAuthenticator{&stubClientAuthenticator{err: errors.New("unknown api key")}},
	)

	// A rejected client credential fails the whole request even though a
	// subject resolved fine.
	_, err := resolver.Resolve(context.Background(), httptest.NewRequest("GET", "/", nil), nil)
	assert.ErrorIs(t, err, atlas_errors.ErrAuthenticationRejected)
}

func TestResolveAbsentClientIsFine(t *testing.T) {
	resolver := NewResolver(
		nil,
		[]ClientAuthenticator{&stubClientAuthenticator{}},
	)

	principal, err := resolver.Resolve(context.Background(), httptest.NewRequest("GET", "/", nil), nil)
	require.NoError(t, err)
	assert.Nil(t, principal.Client)
}

func TestResolveBothIdentities(t *testing.T) {
	resolver := NewResolver(
		[]SubjectAuthenticator{&stubSubjectAuthenticator{user: &model.User{ID: "u1", Username: "demo"}}},
		[]ClientAuthenticator{&stubClientAuthenticator{client: &Client{Kind: ClientKey, ID: "k1", DataSetID: "d1"}}},
	)

	principal, err := resolver.Resolve(context.Background(), httptest.NewRequest("GET", "/", nil), nil)
	require.NoError(t, err)
	require.NotNil(t, principal.Subject)
	require.NotNil(t, principal.Client)
	assert.Equal(t, ClientKey, principal.Client.Kind)
}
