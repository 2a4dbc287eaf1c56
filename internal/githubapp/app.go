// package githubapp wraps the GitHub API surface the oracle needs: app
// authentication, installation token resolution, and a thin per-token
// client for pull requests, issues, labels and comments.
package githubapp

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/go-github/v39/github"
	"github.com/kredits/oracle/internal/apperrors"
	"github.com/kredits/oracle/internal/config"
	"golang.org/x/oauth2"
)

// App authenticates as the GitHub App and exchanges installations for
// short-lived access tokens.
type App struct {
	appID int64
	key   *rsa.PrivateKey
	log   *slog.Logger

	// APIBaseURL overrides the GitHub API endpoint. Left empty outside of
	// tests.
	APIBaseURL string
}

// NewApp parses the app's PEM private key and returns an App.
func NewApp(cfg config.GitHub, log *slog.Logger) (*App, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.AppPrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse github app private key: %w", err)
	}

	return &App{
		appID: cfg.AppID,
		key:   key,
		log:   log,
	}, nil
}

// appJWT signs a short-lived RS256 JWT identifying the app itself, as
// required for the installation endpoints.
func (a *App) appJWT(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(9 * time.Minute)),
		Issuer:    strconv.FormatInt(a.appID, 10),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign app jwt: %w", err)
	}

	return signed, nil
}

// ClientFor resolves an installation access token for the given
// organization or user login and returns a client authenticated with it.
// The login is matched case-insensitively against the installation
// accounts. No matching installation yields apperrors.ErrNotInstalled.
// Tokens are not cached across invocations.
func (a *App) ClientFor(ctx context.Context, login string) (*Client, error) {
	const op = "internal.github.ClientFor"

	appJWT, err := a.appJWT(time.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	appClient := a.newAPIClient(ctx, appJWT)

	var installation *github.Installation

	opts := &github.ListOptions{PerPage: 100}

	for {
		installations, resp, err := appClient.Apps.ListInstallations(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to list installations: %w", op, err)
		}

		for _, inst := range installations {
			if strings.EqualFold(inst.GetAccount().GetLogin(), login) {
				installation = inst
				break
			}
		}

		if installation != nil || resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	if installation == nil {
		return nil, fmt.Errorf("%s: '%s': %w", op, login, apperrors.ErrNotInstalled)
	}

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installation.GetID(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create installation token: %w", op, err)
	}

	a.log.Debug("resolved installation token",
		slog.String("login", login),
		slog.Int64("installation_id", installation.GetID()),
	)

	return a.TokenClient(ctx, token.GetToken()), nil
}

// TokenClient returns a client authenticated with the given OAuth or
// installation access token.
func (a *App) TokenClient(ctx context.Context, token string) *Client {
	return &Client{gh: a.newAPIClient(ctx, token)}
}

func (a *App) newAPIClient(ctx context.Context, token string) *github.Client {
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))

	client := github.NewClient(hc)

	if a.APIBaseURL != "" {
		// go-github requires the base URL to end with a slash.
		if base, err := url.Parse(strings.TrimSuffix(a.APIBaseURL, "/") + "/"); err == nil {
			client.BaseURL = base
		}
	}

	return client
}
