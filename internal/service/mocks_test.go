package service

import (
	"context"

	"github.com/google/go-github/v39/github"
	"github.com/kredits/oracle/internal/domain"
	"github.com/kredits/oracle/internal/ledger"
	"github.com/stretchr/testify/mock"
)

type GitHubClientMock struct {
	mock.Mock
}

var _ GitHubClient = (*GitHubClientMock)(nil)

func (m *GitHubClientMock) PullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*github.PullRequest), args.Error(1)
}

func (m *GitHubClientMock) Issue(ctx context.Context, url string) (*github.Issue, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*github.Issue), args.Error(1)
}

func (m *GitHubClientMock) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	args := m.Called(ctx, owner, repo, number, labels)
	return args.Error(0)
}

func (m *GitHubClientMock) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	args := m.Called(ctx, owner, repo, number, body)
	return args.Error(0)
}

func (m *GitHubClientMock) AuthenticatedUser(ctx context.Context) (*github.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*github.User), args.Error(1)
}

type TokenResolverMock struct {
	mock.Mock
}

var _ TokenResolver = (*TokenResolverMock)(nil)

func (m *TokenResolverMock) ClientFor(ctx context.Context, login string) (GitHubClient, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(GitHubClient), args.Error(1)
}

type LedgerGatewayMock struct {
	mock.Mock
}

var _ ledger.Gateway = (*LedgerGatewayMock)(nil)

func (m *LedgerGatewayMock) FindContributorByAccount(ctx context.Context, account ledger.Account) (*ledger.Contributor, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*ledger.Contributor), args.Error(1)
}

func (m *LedgerGatewayMock) AddContributor(ctx context.Context, draft ledger.ContributorDraft) (*ledger.Contributor, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*ledger.Contributor), args.Error(1)
}

func (m *LedgerGatewayMock) AddContribution(ctx context.Context, contributor *ledger.Contributor, attrs domain.Contribution) error {
	args := m.Called(ctx, contributor, attrs)
	return args.Error(0)
}
