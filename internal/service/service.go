// package service implements the two acquisition flows that turn a pull
// request into an issued contribution: the interactive claim flow and the
// webhook-triggered automatic flow. Both derive eligibility from the same
// domain record and converge on the claimed label as the advisory marker
// against double issuance.
package service

import (
	"context"

	"github.com/google/go-github/v39/github"
)

// GitHubClient is the per-token API surface the flows consume. It is
// satisfied by githubapp.Client for both installation and user tokens.
type GitHubClient interface {
	PullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	Issue(ctx context.Context, url string) (*github.Issue, error)
	AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error
	AuthenticatedUser(ctx context.Context) (*github.User, error)
}

// TokenResolver maps an organization or user login to a client
// authenticated for that installation. Resolution happens per invocation;
// no caching is required of implementations.
type TokenResolver interface {
	ClientFor(ctx context.Context, login string) (GitHubClient, error)
}

// UserClientFunc builds a client from a user's OAuth access token.
type UserClientFunc func(ctx context.Context, token string) GitHubClient

// ledgerSite is the account site every contributor lookup is keyed on.
const ledgerSite = "github.com"
