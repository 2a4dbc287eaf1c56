package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kredits/oracle/internal/apperrors"
	"github.com/kredits/oracle/internal/domain"
	"github.com/kredits/oracle/internal/ledger"
	"github.com/kredits/oracle/pkg/logger/sl"
)

// ClaimService implements the interactive claim flow: present a claimable
// pull request, verify the authenticated requester is an eligible
// recipient, and issue the contribution.
type ClaimService struct {
	log           *slog.Logger
	installations TokenResolver
	userClient    UserClientFunc
	ledger        ledger.Gateway
	rules         domain.Rules
}

func NewClaimService(
	log *slog.Logger,
	installations TokenResolver,
	userClient UserClientFunc,
	gateway ledger.Gateway,
	rules domain.Rules,
) *ClaimService {
	return &ClaimService{
		log:           log,
		installations: installations,
		userClient:    userClient,
		ledger:        gateway,
		rules:         rules,
	}
}

// ClaimReview is the outcome of the authenticate-callback step: the
// reloaded record plus the requester's profile and, when one exists, the
// ledger contributor to confirm. A nil Contributor means registration is
// needed.
type ClaimReview struct {
	PullRequest *domain.PullRequest
	Contributor *ledger.Contributor
	Login       string
	Name        string
	AvatarURL   string
}

// Present fetches and loads the requested pull request using an
// installation token. It returns apperrors.ErrNotInstalled when no
// installation covers the owner, and an IneligibleError together with the
// loaded record when the pull request can not be claimed, so callers can
// render diagnostics.
func (s *ClaimService) Present(ctx context.Context, owner, repo string, number int) (*domain.PullRequest, error) {
	const op = "internal.service.claim.Present"

	client, err := s.installations.ClientFor(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	record, err := s.fetchRecord(ctx, client, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !record.Valid() {
		return record, &apperrors.IneligibleError{Reason: "pull request is not merged, already claimed, or carries no amount label"}
	}

	return record, nil
}

// Review re-fetches the pull request with the requester's own token (no
// cached state is trusted), re-checks eligibility, and looks up an
// existing contributor for the authenticated identity.
func (s *ClaimService) Review(ctx context.Context, token, owner, repo string, number int) (*ClaimReview, error) {
	const op = "internal.service.claim.Review"

	client := s.userClient(ctx, token)

	user, err := client.AuthenticatedUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to fetch authenticated user: %w", op, err)
	}

	record, err := s.fetchRecord(ctx, client, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	login := user.GetLogin()

	if !record.Valid() || !record.ClaimableBy(login) {
		return nil, &apperrors.IneligibleError{Reason: fmt.Sprintf("'%s' can not claim this pull request", login)}
	}

	contributor, err := s.ledger.FindContributorByAccount(ctx, ledger.Account{
		Site:     ledgerSite,
		Username: login,
	})
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("%s: contributor lookup failed: %w", op, err)
	}

	return &ClaimReview{
		PullRequest: record,
		Contributor: contributor,
		Login:       login,
		Name:        user.GetName(),
		AvatarURL:   user.GetAvatarURL(),
	}, nil
}

// Finalize recomputes eligibility from a fresh fetch, creates the
// contributor when none exists, writes the contribution, and applies the
// claimed label best-effort. A label failure is only logged: the ledger
// write already succeeded and must not be rolled back or re-surfaced.
func (s *ClaimService) Finalize(ctx context.Context, token, owner, repo string, number int, account string) (*domain.PullRequest, error) {
	const op = "internal.service.claim.Finalize"
	log := s.log.With(slog.String("op", op), slog.String("repo", owner+"/"+repo), slog.Int("number", number))

	client := s.userClient(ctx, token)

	user, err := client.AuthenticatedUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to fetch authenticated user: %w", op, err)
	}

	login := user.GetLogin()

	record, err := s.fetchRecord(ctx, client, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !record.Valid() || !record.ClaimableBy(login) {
		return nil, &apperrors.IneligibleError{Reason: fmt.Sprintf("'%s' can not claim this pull request", login)}
	}

	attrs, err := record.ContributionAttributes()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	contributor, err := s.ledger.FindContributorByAccount(ctx, ledger.Account{
		Site:     ledgerSite,
		Username: login,
	})

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		contributor, err = s.ledger.AddContributor(ctx, ledger.ContributorDraft{
			Account:        account,
			Name:           user.GetName(),
			Kind:           "person",
			URL:            user.GetBlog(),
			GithubUsername: login,
			GithubUID:      user.GetID(),
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	case err != nil:
		return nil, fmt.Errorf("%s: contributor lookup failed: %w", op, err)
	}

	if err := s.ledger.AddContribution(ctx, contributor, attrs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	contributionsIssuedTotal.WithLabelValues("interactive").Inc()
	log.Info("contribution issued",
		slog.String("recipient", login),
		slog.Int("amount", attrs.Amount),
	)

	if err := client.AddLabels(ctx, record.RepoOwner, record.RepoName, record.Number, []string{s.rules.ClaimedLabel}); err != nil {
		log.Error("failed to apply claimed label", sl.Err(err))
	}

	return record, nil
}

// fetchRecord fetches the pull request and loads the linked issue labels.
func (s *ClaimService) fetchRecord(ctx context.Context, client GitHubClient, owner, repo string, number int) (*domain.PullRequest, error) {
	payload, err := client.PullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull request: %w", err)
	}

	record := domain.NewPullRequest(payload, s.rules)

	if err := record.Load(ctx, client); err != nil {
		return nil, err
	}

	return record, nil
}
