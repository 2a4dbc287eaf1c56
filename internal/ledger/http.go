package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/kredits/oracle/internal/apperrors"
	"github.com/kredits/oracle/internal/config"
	"github.com/kredits/oracle/internal/domain"
)

// HTTPGateway talks to the kredits ledger bridge over its REST surface.
// The bridge hides wallet management and chain RPC connectivity behind
// plain JSON endpoints.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

var _ Gateway = (*HTTPGateway)(nil)

func NewHTTPGateway(cfg config.Ledger, log *slog.Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     log,
	}
}

func (g *HTTPGateway) FindContributorByAccount(ctx context.Context, account Account) (*Contributor, error) {
	const op = "internal.ledger.FindContributorByAccount"

	endpoint := fmt.Sprintf("%s/contributors/account/%s/%s",
		g.baseURL, url.PathEscape(account.Site), url.PathEscape(account.Username),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: contributor '%s': %w", op, account.Username, apperrors.ErrNotFound)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var contributor Contributor
	if err := json.NewDecoder(resp.Body).Decode(&contributor); err != nil {
		return nil, fmt.Errorf("%s: failed to decode contributor: %w", op, err)
	}

	return &contributor, nil
}

func (g *HTTPGateway) AddContributor(ctx context.Context, draft ContributorDraft) (*Contributor, error) {
	const op = "internal.ledger.AddContributor"

	if err := g.post(ctx, op, g.baseURL+"/contributors", draft); err != nil {
		return nil, err
	}

	g.log.Info("contributor added", slog.String("github_username", draft.GithubUsername))

	// The bridge confirms the transaction before answering, so the record
	// is findable immediately after the write.
	contributor, err := g.FindContributorByAccount(ctx, Account{
		Site:     "github.com",
		Username: draft.GithubUsername,
	})
	if err != nil {
		return nil, &apperrors.LedgerWriteError{Op: op, Err: err}
	}

	return contributor, nil
}

func (g *HTTPGateway) AddContribution(ctx context.Context, contributor *Contributor, attrs domain.Contribution) error {
	const op = "internal.ledger.AddContribution"

	payload := struct {
		domain.Contribution
		ContributorID       int64  `json:"contributorId"`
		ContributorIpfsHash string `json:"contributorIpfsHash"`
	}{
		Contribution:        attrs,
		ContributorID:       contributor.ID,
		ContributorIpfsHash: contributor.IpfsHash,
	}

	if err := g.post(ctx, op, g.baseURL+"/contributions", payload); err != nil {
		return err
	}

	g.log.Info("contribution added",
		slog.Int64("contributor_id", contributor.ID),
		slog.Int("amount", attrs.Amount),
	)

	return nil
}

func (g *HTTPGateway) post(ctx context.Context, op, endpoint string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return &apperrors.LedgerWriteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return &apperrors.LedgerWriteError{
			Op:  op,
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return nil
}
