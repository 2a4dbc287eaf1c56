package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v39/github"
	"github.com/kredits/oracle/internal/apperrors"
	"github.com/kredits/oracle/internal/domain"
	"github.com/kredits/oracle/internal/ledger"
	"github.com/kredits/oracle/pkg/logger/sl"
)

// WebhookService implements the automatic flow: on a merge notification
// it issues contributions to every resolvable recipient, or asks them to
// claim interactively.
type WebhookService struct {
	log           *slog.Logger
	installations TokenResolver
	ledger        ledger.Gateway
	rules         domain.Rules
	publicHost    string
}

func NewWebhookService(
	log *slog.Logger,
	installations TokenResolver,
	gateway ledger.Gateway,
	rules domain.Rules,
	publicHost string,
) *WebhookService {
	return &WebhookService{
		log:           log,
		installations: installations,
		ledger:        gateway,
		rules:         rules,
		publicHost:    publicHost,
	}
}

// ProcessEvent handles one normalized pull_request event. Events that do
// not denote a merged closure are ignored. A failure before recipient
// processing (no installation, issue fetch error) drops the whole event
// with an error for the caller to log; from then on each recipient is
// processed independently and failures are isolated per recipient.
func (s *WebhookService) ProcessEvent(ctx context.Context, evt *github.PullRequestEvent) error {
	const op = "internal.service.webhook.ProcessEvent"
	log := s.log.With(slog.String("op", op))

	if evt.GetAction() != "closed" || !evt.GetPullRequest().GetMerged() {
		log.Debug("ignoring event", slog.String("action", evt.GetAction()))
		return nil
	}

	ownerLogin := evt.GetRepo().GetOwner().GetLogin()

	client, err := s.installations.ClientFor(ctx, ownerLogin)
	if err != nil {
		// No null dereference on a missing installation: the event is
		// dropped as fatal-for-this-event.
		return fmt.Errorf("%s: %w", op, err)
	}

	record := domain.NewPullRequest(evt.GetPullRequest(), s.rules)

	if err := record.Load(ctx, client); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	attrs, err := record.ContributionAttributes()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, recipient := range record.Recipients() {
		if err := s.processRecipient(ctx, client, record, attrs, recipient); err != nil {
			log.Error("failed to process recipient",
				slog.String("recipient", recipient),
				slog.String("repo", record.RepoFullName),
				slog.Int("number", record.Number),
				sl.Err(err),
			)
		}
	}

	return nil
}

// processRecipient issues the contribution for a known, eligible
// recipient, or posts a claim-link comment for an unknown one.
func (s *WebhookService) processRecipient(
	ctx context.Context,
	client GitHubClient,
	record *domain.PullRequest,
	attrs domain.Contribution,
	recipient string,
) error {
	log := s.log.With(
		slog.String("recipient", recipient),
		slog.String("repo", record.RepoFullName),
		slog.Int("number", record.Number),
	)

	contributor, err := s.ledger.FindContributorByAccount(ctx, ledger.Account{
		Site:     ledgerSite,
		Username: recipient,
	})

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return s.askToClaim(ctx, client, record, recipient)
	case err != nil:
		return fmt.Errorf("contributor lookup failed: %w", err)
	}

	// ClaimableBy is redundant here since the recipient is drawn from the
	// record's own list, but re-checked for consistency with the
	// interactive path.
	if !record.Valid() || !record.ClaimableBy(recipient) {
		log.Info("invalid pull request webhook, skipping recipient")
		return nil
	}

	if err := s.ledger.AddContribution(ctx, contributor, attrs); err != nil {
		return err
	}

	contributionsIssuedTotal.WithLabelValues("webhook").Inc()
	log.Info("contribution issued", slog.Int("amount", attrs.Amount))

	// Best effort, applied only after the write succeeded. Never used as
	// a guard.
	if err := client.AddLabels(ctx, record.RepoOwner, record.RepoName, record.Number, []string{s.rules.ClaimedLabel}); err != nil {
		log.Error("failed to apply claimed label", sl.Err(err))
	}

	return nil
}

func (s *WebhookService) askToClaim(ctx context.Context, client GitHubClient, record *domain.PullRequest, recipient string) error {
	body := fmt.Sprintf(
		"We wanted to send you some Kredits, but did not find your contributor profile.\n\n"+
			"You can claim your Kredits [here](%s/github/claim/%s/%s/pull/%d)",
		s.publicHost, record.RepoOwner, record.RepoName, record.Number,
	)

	if err := client.CreateComment(ctx, record.RepoOwner, record.RepoName, record.Number, body); err != nil {
		return fmt.Errorf("failed to post claim comment for '%s': %w", recipient, err)
	}

	claimCommentsTotal.Inc()
	s.log.Info("posted claim comment",
		slog.String("recipient", recipient),
		slog.String("repo", record.RepoFullName),
		slog.Int("number", record.Number),
	)

	return nil
}
