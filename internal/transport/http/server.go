// package http implements the HTTP transport layer for the oracle: the
// interactive claim pages, the webhook receiver, and the metrics endpoint.
// It decodes requests, drives the claim flows, and renders the responses.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-github/v39/github"
	"github.com/google/uuid"
	"github.com/kredits/oracle/internal/apperrors"
	"github.com/kredits/oracle/internal/domain"
	"github.com/kredits/oracle/internal/service"
	"github.com/kredits/oracle/internal/session"
	"github.com/kredits/oracle/internal/validation"
	"github.com/kredits/oracle/pkg/logger/sl"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
)

// webhookTimeout bounds the background processing of one webhook
// delivery; the HTTP response never waits on it.
const webhookTimeout = 2 * time.Minute

// ClaimFlow is the interactive flow consumed by the claim handlers.
type ClaimFlow interface {
	Present(ctx context.Context, owner, repo string, number int) (*domain.PullRequest, error)
	Review(ctx context.Context, token, owner, repo string, number int) (*service.ClaimReview, error)
	Finalize(ctx context.Context, token, owner, repo string, number int, account string) (*domain.PullRequest, error)
}

// WebhookFlow processes one normalized pull_request event.
type WebhookFlow interface {
	ProcessEvent(ctx context.Context, evt *github.PullRequestEvent) error
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	log      *slog.Logger
	claims   ClaimFlow
	webhooks WebhookFlow
	sessions *session.Manager
	oauth    *oauth2.Config
	views    *views
}

// NewServer creates a new instance of the HTTP server.
func NewServer(
	log *slog.Logger,
	claims ClaimFlow,
	webhooks WebhookFlow,
	sessions *session.Manager,
	oauth *oauth2.Config,
) (*Server, error) {
	v, err := newViews()
	if err != nil {
		return nil, err
	}

	return &Server{
		log:      log,
		claims:   claims,
		webhooks: webhooks,
		sessions: sessions,
		oauth:    oauth,
		views:    v,
	}, nil
}

// Routes sets up the router with all middleware and endpoints. Handlers
// are registered statically; there is no reflective discovery.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Get("/github/claim/{owner}/{repo}/pull/{number}", s.handleClaim)
	mux.Get("/github/setup", s.handleSetup)
	mux.Post("/github/register", s.handleRegister)
	mux.Post("/github/webhook", s.handleWebhook)

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// handleClaim presents a claimable pull request and starts the session.
func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.handleClaim"

	owner := chi.URLParam(r, "owner")
	repo := chi.URLParam(r, "repo")

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		s.renderError(w, http.StatusNotFound, "not a pull request number", nil)
		return
	}

	record, err := s.claims.Present(r.Context(), owner, repo, number)
	if err != nil {
		// The record accompanies an ineligibility error for diagnostics.
		s.handleFlowError(w, r, op, err, record)
		return
	}

	claim := session.PendingClaim{Owner: owner, Repo: repo, Number: number}
	if err := s.sessions.SetPendingClaim(w, r, claim); err != nil {
		s.handleFlowError(w, r, op, err, nil)
		return
	}

	state := uuid.NewString()
	if err := s.sessions.SetOAuthState(w, r, state); err != nil {
		s.handleFlowError(w, r, op, err, nil)
		return
	}

	s.views.render(w, http.StatusOK, "login", loginView{
		PullRequest: record,
		AuthURL:     s.oauth.AuthCodeURL(state),
	})
}

// handleSetup is the OAuth callback. It completes the handshake, then
// shows either the registration form or the pre-filled confirmation.
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.handleSetup"

	token, ok := s.exchangeOrStoredToken(w, r)
	claim, hasClaim := s.sessions.PendingClaim(r)

	if !ok || !hasClaim {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	review, err := s.claims.Review(r.Context(), token, claim.Owner, claim.Repo, claim.Number)
	if err != nil {
		s.handleFlowError(w, r, op, err, nil)
		return
	}

	s.views.render(w, http.StatusOK, "register", registerView{
		PullRequest: review.PullRequest,
		Contributor: review.Contributor,
		Login:       review.Login,
		Name:        review.Name,
		AvatarURL:   review.AvatarURL,
	})
}

// handleRegister finalizes the claim and writes the contribution.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.handleRegister"

	token, hasToken := s.sessions.UserToken(r)
	claim, hasClaim := s.sessions.PendingClaim(r)

	if !hasToken || !hasClaim {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	req := registerRequest{Account: r.FormValue("account")}
	if err := validation.ValidateStruct(&req); err != nil {
		s.handleFlowError(w, r, op, err, nil)
		return
	}

	record, err := s.claims.Finalize(r.Context(), token, claim.Owner, claim.Repo, claim.Number, req.Account)
	if err != nil {
		s.handleFlowError(w, r, op, err, nil)
		return
	}

	if err := s.sessions.ClearPendingClaim(w, r); err != nil {
		s.log.Error("failed to clear pending claim", sl.Err(err))
	}

	s.views.render(w, http.StatusOK, "success", successView{PullRequest: record})
}

// handleWebhook receives merge notifications. Processing is dispatched to
// the background and the response is 200 regardless of its outcome.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	evtType := r.Header.Get("X-GitHub-Event")

	evt, err := decodePullRequestEvent(r)
	if err != nil {
		s.log.Error("failed to decode webhook payload", sl.Err(err))
		s.respondOK(w)

		return
	}

	s.log.Info("received github hook",
		slog.String("event", evtType),
		slog.String("action", evt.GetAction()),
	)

	if evtType != "pull_request" {
		s.respondOK(w)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
		defer cancel()

		if err := s.webhooks.ProcessEvent(ctx, evt); err != nil {
			s.log.Error("failed to process webhook event", sl.Err(err))
		}
	}()

	s.respondOK(w)
}

// exchangeOrStoredToken completes the OAuth code exchange when the
// callback carries a code, storing the token in the session; otherwise it
// falls back to a previously stored token.
func (s *Server) exchangeOrStoredToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := r.URL.Query().Get("code")
	if code == "" {
		return s.sessions.UserToken(r)
	}

	state, ok := s.sessions.OAuthState(r)
	if !ok || state != r.URL.Query().Get("state") {
		return "", false
	}

	token, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		s.log.Error("oauth exchange failed", sl.Err(err))
		return "", false
	}

	if err := s.sessions.SetUserToken(w, r, token.AccessToken); err != nil {
		s.log.Error("failed to store user token", sl.Err(err))
	}

	return token.AccessToken, true
}

func (s *Server) respondOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("OK")); err != nil {
		s.log.Error("failed to write response", sl.Err(err))
	}
}

// handleFlowError provides centralized error handling for the claim
// handlers. It logs the internal error and maps it to the response the
// flow contract prescribes. An ineligibility error clears the pending
// claim so a stale descriptor can not be replayed.
func (s *Server) handleFlowError(w http.ResponseWriter, r *http.Request, op string, err error, record *domain.PullRequest) {
	log := s.log.With(slog.String("op", op))
	log.Error("claim flow error", sl.Err(err))

	var (
		upstreamErr   *apperrors.UpstreamStatusError
		ledgerErr     *apperrors.LedgerWriteError
		validationErr *validation.ValidationError
	)

	switch {
	case errors.Is(err, apperrors.ErrNotInstalled):
		s.renderError(w, http.StatusNotFound, "Oracle GitHub app not installed", nil)
	case errors.Is(err, apperrors.ErrIneligible):
		if clearErr := s.sessions.ClearPendingClaim(w, r); clearErr != nil {
			log.Error("failed to clear pending claim", sl.Err(clearErr))
		}

		s.renderError(w, http.StatusNotFound, "You can not claim this pull request.", record)
	case errors.As(err, &upstreamErr):
		s.renderError(w, http.StatusNotFound, "Could not fetch the pull request from GitHub.", nil)
	case errors.As(err, &validationErr):
		s.renderError(w, http.StatusBadRequest, validationErr.Error(), nil)
	case errors.As(err, &ledgerErr):
		s.renderError(w, http.StatusInternalServerError, "Your contribution could not be recorded. Please try again later.", nil)
	default:
		s.renderError(w, http.StatusInternalServerError, "Something went wrong.", nil)
	}
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string, record *domain.PullRequest) {
	s.views.render(w, status, "error", errorView{
		Message:     message,
		PullRequest: record,
	})
}
