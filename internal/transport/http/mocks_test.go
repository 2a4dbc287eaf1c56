package http

import (
	"context"

	"github.com/google/go-github/v39/github"
	"github.com/kredits/oracle/internal/domain"
	"github.com/kredits/oracle/internal/service"
	"github.com/stretchr/testify/mock"
)

type ClaimFlowMock struct {
	mock.Mock
}

var _ ClaimFlow = (*ClaimFlowMock)(nil)

func (m *ClaimFlowMock) Present(ctx context.Context, owner, repo string, number int) (*domain.PullRequest, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.PullRequest), args.Error(1)
}

func (m *ClaimFlowMock) Review(ctx context.Context, token, owner, repo string, number int) (*service.ClaimReview, error) {
	args := m.Called(ctx, token, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.ClaimReview), args.Error(1)
}

func (m *ClaimFlowMock) Finalize(ctx context.Context, token, owner, repo string, number int, account string) (*domain.PullRequest, error) {
	args := m.Called(ctx, token, owner, repo, number, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.PullRequest), args.Error(1)
}

// webhookFlowSpy records events through a channel so tests can wait for
// the background dispatch.
type webhookFlowSpy struct {
	events chan *github.PullRequestEvent
}

var _ WebhookFlow = (*webhookFlowSpy)(nil)

func newWebhookFlowSpy() *webhookFlowSpy {
	return &webhookFlowSpy{events: make(chan *github.PullRequestEvent, 1)}
}

func (s *webhookFlowSpy) ProcessEvent(_ context.Context, evt *github.PullRequestEvent) error {
	s.events <- evt
	return nil
}
