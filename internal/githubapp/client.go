package githubapp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v39/github"
	"github.com/kredits/oracle/internal/apperrors"
)

// Client is a thin wrapper around an authenticated go-github client,
// scoped to either an installation token or a user's OAuth token.
type Client struct {
	gh *github.Client
}

// PullRequest fetches a pull request.
func (c *Client) PullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, upstreamError(resp, fmt.Sprintf("%s/%s/pulls/%d", owner, repo, number), err)
	}

	return pr, nil
}

// Issue fetches an issue by its canonical API URL. Pull requests and
// issues share numbering, but labels only exist on the issue resource.
func (c *Client) Issue(ctx context.Context, url string) (*github.Issue, error) {
	req, err := c.gh.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build issue request: %w", err)
	}

	issue := new(github.Issue)

	resp, err := c.gh.Do(ctx, req, issue)
	if err != nil {
		return nil, upstreamError(resp, url, err)
	}

	return issue, nil
}

// AddLabels attaches labels to the issue behind a pull request.
func (c *Client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	_, resp, err := c.gh.Issues.AddLabelsToIssue(ctx, owner, repo, number, labels)
	if err != nil {
		return upstreamError(resp, fmt.Sprintf("%s/%s/issues/%d/labels", owner, repo, number), err)
	}

	return nil
}

// CreateComment posts a comment on the issue behind a pull request.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}

	_, resp, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		return upstreamError(resp, fmt.Sprintf("%s/%s/issues/%d/comments", owner, repo, number), err)
	}

	return nil
}

// AuthenticatedUser returns the profile of the token's owner.
func (c *Client) AuthenticatedUser(ctx context.Context) (*github.User, error) {
	user, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return nil, upstreamError(resp, "user", err)
	}

	return user, nil
}

// upstreamError converts an error status into an UpstreamStatusError so
// flows can distinguish bad upstream responses from transport failures.
func upstreamError(resp *github.Response, url string, err error) error {
	if resp != nil && resp.StatusCode >= http.StatusBadRequest {
		return &apperrors.UpstreamStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return err
}
