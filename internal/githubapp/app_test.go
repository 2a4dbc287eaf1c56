package githubapp

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kredits/oracle/internal/apperrors"
	"github.com/kredits/oracle/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testPrivateKeyPEM(t *testing.T) string {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}

	return string(pem.EncodeToMemory(block))
}

func newTestApp(t *testing.T, apiURL string) *App {
	t.Helper()

	app, err := NewApp(config.GitHub{
		AppID:         12345,
		AppPrivateKey: testPrivateKeyPEM(t),
	}, testLogger())
	require.NoError(t, err)

	app.APIBaseURL = apiURL

	return app
}

func TestNewApp_InvalidKey(t *testing.T) {
	_, err := NewApp(config.GitHub{
		AppID:         12345,
		AppPrivateKey: "not a pem key",
	}, testLogger())

	assert.Error(t, err)
}

func installationsAPI(t *testing.T, login string, installationID int64) http.Handler {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/app/installations", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		require.True(t, strings.HasPrefix(auth, "Bearer "), "expected a bearer app token, got %q", auth)

		fmt.Fprintf(w, `[{"id": %d, "account": {"login": %q}}]`, installationID, login)
	})

	mux.HandleFunc(fmt.Sprintf("/app/installations/%d/access_tokens", installationID), func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"token": "installation-token", "expires_at": "2026-09-01T12:00:00Z"}`)
	})

	return mux
}

func TestApp_ClientFor(t *testing.T) {
	ts := httptest.NewServer(installationsAPI(t, "Kosmos", 11))
	defer ts.Close()

	app := newTestApp(t, ts.URL)

	client, err := app.ClientFor(context.Background(), "kosmos")

	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestApp_ClientFor_NotInstalled(t *testing.T) {
	ts := httptest.NewServer(installationsAPI(t, "someoneelse", 11))
	defer ts.Close()

	app := newTestApp(t, ts.URL)

	_, err := app.ClientFor(context.Background(), "kosmos")

	assert.ErrorIs(t, err, apperrors.ErrNotInstalled)
}

func TestApp_ClientFor_Paginated(t *testing.T) {
	mux := http.NewServeMux()

	mux.HandleFunc("/app/installations", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"id": 22, "account": {"login": "kosmos"}}]`)
			return
		}

		w.Header().Set("Link", fmt.Sprintf(`<http://%s/app/installations?page=2>; rel="next"`, r.Host))
		fmt.Fprint(w, `[{"id": 11, "account": {"login": "first-page-org"}}]`)
	})

	mux.HandleFunc("/app/installations/22/access_tokens", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"token": "installation-token"}`)
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	app := newTestApp(t, ts.URL)

	client, err := app.ClientFor(context.Background(), "kosmos")

	require.NoError(t, err)
	assert.NotNil(t, client)
}
