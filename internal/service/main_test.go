package service

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-github/v39/github"
	"github.com/kredits/oracle/internal/domain"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testRules(t *testing.T) domain.Rules {
	t.Helper()

	rules, err := domain.NewRules(`^kredits-\d`, map[string]int{
		"kredits-1": 500,
		"kredits-2": 1500,
		"kredits-3": 5000,
	}, "kredits-claimed")
	require.NoError(t, err)

	return rules
}

func prPayload(owner, repo string, number int, merged bool, assignees []string, author string) *github.PullRequest {
	pr := &github.PullRequest{
		Number:   github.Int(number),
		Title:    github.String("Add frobnicator support"),
		Merged:   github.Bool(merged),
		User:     &github.User{Login: github.String(author)},
		IssueURL: github.String(fmt.Sprintf("https://api.github.com/repos/%s/%s/issues/%d", owner, repo, number)),
		HTMLURL:  github.String(fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, repo, number)),
		Base: &github.PullRequestBranch{
			Repo: &github.Repository{
				Name:     github.String(repo),
				FullName: github.String(owner + "/" + repo),
				Owner:    &github.User{Login: github.String(owner)},
			},
		},
	}

	if merged {
		mergedAt := time.Date(2020, 4, 1, 12, 30, 45, 0, time.UTC)
		pr.MergedAt = &mergedAt
	}

	for _, a := range assignees {
		pr.Assignees = append(pr.Assignees, &github.User{Login: github.String(a)})
	}

	return pr
}

func issueWithLabels(labels ...string) *github.Issue {
	issue := &github.Issue{}
	for _, l := range labels {
		issue.Labels = append(issue.Labels, &github.Label{Name: github.String(l)})
	}

	return issue
}

func prEvent(action string, owner, repo string, pr *github.PullRequest) *github.PullRequestEvent {
	return &github.PullRequestEvent{
		Action:      github.String(action),
		PullRequest: pr,
		Repo: &github.Repository{
			Name:  github.String(repo),
			Owner: &github.User{Login: github.String(owner)},
		},
	}
}
