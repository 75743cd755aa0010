package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	root := &cobra.Command{Use: "mascotctl"}
	site := &cobra.Command{Use: "site", Annotations: Route("/sites")}
	list := &cobra.Command{Use: "list"}
	setup := &cobra.Command{Use: "setup", Annotations: Route("/setup/{0}")}
	site.AddCommand(list)
	root.AddCommand(site, setup)

	path, ok := Resolve(list, nil)
	require.True(t, ok, "route is inherited from the parent")
	assert.Equal(t, "/sites", path)

	path, ok = Resolve(setup, []string{"abc/def"})
	require.True(t, ok)
	assert.Equal(t, "/setup/abc%2Fdef", path)

	_, ok = Resolve(root, nil)
	assert.False(t, ok)
}

func newSession(t *testing.T, token string, status int) (*sdk.Session, sdk.CredentialStore) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"admin":{"username":"root"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	t.Cleanup(srv.Close)

	store := sdk.NewMemoryStore(token)
	gw := sdk.NewGateway(srv.URL, store)
	return sdk.NewSession(gw, sdk.WithPublicPaths("/setup/")), store
}

func TestEnforce(t *testing.T) {
	t.Run("valid credential renders", func(t *testing.T) {
		s, _ := newSession(t, "t1", http.StatusOK)
		assert.NoError(t, Enforce(testContext(t), s, "/sites"))
		assert.Equal(t, sdk.PhaseAuthenticated, s.State().Phase)
	})

	t.Run("no credential is not logged in", func(t *testing.T) {
		s, _ := newSession(t, "", http.StatusOK)
		assert.ErrorIs(t, Enforce(testContext(t), s, "/sites"), ErrNotLoggedIn)
	})

	t.Run("revoked credential is cleared", func(t *testing.T) {
		s, store := newSession(t, "t1", http.StatusUnauthorized)
		assert.ErrorIs(t, Enforce(testContext(t), s, "/dashboard"), ErrNotLoggedIn)
		tok, _ := store.Get()
		assert.Empty(t, tok)
	})

	t.Run("public route renders without credential", func(t *testing.T) {
		s, _ := newSession(t, "", http.StatusOK)
		assert.NoError(t, Enforce(testContext(t), s, "/setup/abc"))
		assert.NoError(t, Enforce(testContext(t), s, "/login"))
	})
}

func TestExplain(t *testing.T) {
	assert.NoError(t, Explain(nil))
	assert.ErrorIs(t, Explain(fmt.Errorf("list sites: %w", &sdk.Error{Kind: sdk.KindUnauthorized})), ErrSessionExpired)
	assert.ErrorIs(t, Explain(&sdk.Error{Kind: sdk.KindUnauthenticated}), ErrNotLoggedIn)

	other := errors.New("boom")
	assert.Same(t, other, Explain(other))
}
