package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundtrip saves session state on one request and returns a fresh
// request carrying the resulting cookie, like a browser would.
func roundtrip(t *testing.T, save func(w http.ResponseWriter, r *http.Request)) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	save(rec, req)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[len(cookies)-1])

	return next
}

func TestManager_PendingClaim(t *testing.T) {
	m := NewManager("test-secret")
	claim := PendingClaim{Owner: "kosmos", Repo: "widgets", Number: 42}

	req := roundtrip(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.SetPendingClaim(w, r, claim))
	})

	got, ok := m.PendingClaim(req)

	require.True(t, ok)
	assert.Equal(t, claim, got)
}

func TestManager_PendingClaim_Empty(t *testing.T) {
	m := NewManager("test-secret")

	_, ok := m.PendingClaim(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, ok)
}

func TestManager_ClearPendingClaim_KeepsToken(t *testing.T) {
	m := NewManager("test-secret")

	req := roundtrip(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.SetPendingClaim(w, r, PendingClaim{Owner: "kosmos", Repo: "widgets", Number: 42}))
		require.NoError(t, m.SetUserToken(w, r, "user-token"))
	})

	cleared := roundtrip(t, func(w http.ResponseWriter, r *http.Request) {
		for _, c := range req.Cookies() {
			r.AddCookie(c)
		}

		require.NoError(t, m.ClearPendingClaim(w, r))
	})

	_, hasClaim := m.PendingClaim(cleared)
	token, hasToken := m.UserToken(cleared)

	assert.False(t, hasClaim)
	require.True(t, hasToken)
	assert.Equal(t, "user-token", token)
}

func TestManager_OAuthState(t *testing.T) {
	m := NewManager("test-secret")

	req := roundtrip(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.SetOAuthState(w, r, "state-123"))
	})

	state, ok := m.OAuthState(req)

	require.True(t, ok)
	assert.Equal(t, "state-123", state)

	_, ok = m.UserToken(req)
	assert.False(t, ok)
}

func TestManager_TamperedCookieIsRejected(t *testing.T) {
	m := NewManager("test-secret")

	req := roundtrip(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.SetUserToken(w, r, "user-token"))
	})

	other := NewManager("different-secret")

	_, ok := other.UserToken(req)

	assert.False(t, ok)
}
