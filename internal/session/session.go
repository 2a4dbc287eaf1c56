// package session stores the per-browser state the interactive claim flow
// needs: the pending claim descriptor, the OAuth CSRF state, and the
// authenticated user's token. Everything lives in an encrypted cookie;
// the engine treats the store as opaque beyond these fields.
package session

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "kredits_oracle"

	keyPendingClaim = "pending_claim"
	keyUserToken    = "user_token"
	keyOAuthState   = "oauth_state"
)

// PendingClaim correlates the three interactive steps: it records which
// pull request the user started claiming.
type PendingClaim struct {
	Owner  string
	Repo   string
	Number int
}

func init() {
	gob.Register(PendingClaim{})
}

// Manager wraps a cookie store with typed accessors.
type Manager struct {
	store sessions.Store
}

func NewManager(secret string) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{store: store}
}

// PendingClaim returns the stored claim descriptor, if any.
func (m *Manager) PendingClaim(r *http.Request) (PendingClaim, bool) {
	s, _ := m.store.Get(r, sessionName)

	claim, ok := s.Values[keyPendingClaim].(PendingClaim)

	return claim, ok
}

func (m *Manager) SetPendingClaim(w http.ResponseWriter, r *http.Request, claim PendingClaim) error {
	return m.set(w, r, keyPendingClaim, claim)
}

// ClearPendingClaim drops the claim descriptor but keeps the rest of the
// session intact.
func (m *Manager) ClearPendingClaim(w http.ResponseWriter, r *http.Request) error {
	s, _ := m.store.Get(r, sessionName)
	delete(s.Values, keyPendingClaim)

	return s.Save(r, w)
}

// UserToken returns the OAuth access token of the authenticated user.
func (m *Manager) UserToken(r *http.Request) (string, bool) {
	s, _ := m.store.Get(r, sessionName)

	token, ok := s.Values[keyUserToken].(string)

	return token, ok && token != ""
}

func (m *Manager) SetUserToken(w http.ResponseWriter, r *http.Request, token string) error {
	return m.set(w, r, keyUserToken, token)
}

// OAuthState returns the CSRF state issued when the login was started.
func (m *Manager) OAuthState(r *http.Request) (string, bool) {
	s, _ := m.store.Get(r, sessionName)

	state, ok := s.Values[keyOAuthState].(string)

	return state, ok && state != ""
}

func (m *Manager) SetOAuthState(w http.ResponseWriter, r *http.Request, state string) error {
	return m.set(w, r, keyOAuthState, state)
}

func (m *Manager) set(w http.ResponseWriter, r *http.Request, key string, value interface{}) error {
	s, _ := m.store.Get(r, sessionName)
	s.Values[key] = value

	return s.Save(r, w)
}
