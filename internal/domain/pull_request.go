// package domain holds the pull request record and the eligibility rules
// that decide whether, how much, and to whom kredits are issued.
package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/go-github/v39/github"
	"github.com/kredits/oracle/internal/apperrors"
)

// IssueFetcher fetches the issue linked to a pull request by its canonical
// API URL. Labels live on the issue resource, not the pull request, which
// is why a secondary fetch is needed at all.
type IssueFetcher interface {
	Issue(ctx context.Context, url string) (*github.Issue, error)
}

// PullRequest is a typed view over a raw pull request payload. It starts
// unloaded: identity fields and recipients are available immediately, but
// the label-derived fields (Amount, Claimed, Valid) are only trustworthy
// after Load has attached the linked issue's labels.
type PullRequest struct {
	Number       int
	Title        string
	RepoOwner    string
	RepoName     string
	RepoFullName string
	AuthorLogin  string
	Assignees    []string
	WebURL       string
	IssueURL     string
	Merged       bool
	Date         string
	Time         string

	rules  Rules
	raw    json.RawMessage
	labels []string
	loaded bool
}

// NewPullRequest builds an unloaded record from a pull request payload.
// The payload is kept verbatim and passed through to the ledger as the
// contribution details.
func NewPullRequest(payload *github.PullRequest, rules Rules) *PullRequest {
	pr := &PullRequest{
		Number:       payload.GetNumber(),
		Title:        payload.GetTitle(),
		RepoOwner:    payload.GetBase().GetRepo().GetOwner().GetLogin(),
		RepoName:     payload.GetBase().GetRepo().GetName(),
		RepoFullName: payload.GetBase().GetRepo().GetFullName(),
		AuthorLogin:  payload.GetUser().GetLogin(),
		WebURL:       payload.GetLinks().GetHTML().GetHRef(),
		IssueURL:     payload.GetIssueURL(),
		Merged:       payload.GetMerged(),
		rules:        rules,
	}

	if pr.WebURL == "" {
		pr.WebURL = payload.GetHTMLURL()
	}

	for _, a := range payload.Assignees {
		pr.Assignees = append(pr.Assignees, a.GetLogin())
	}

	if mergedAt := payload.GetMergedAt(); !mergedAt.IsZero() {
		parts := strings.SplitN(mergedAt.UTC().Format("2006-01-02T15:04:05Z"), "T", 2)
		pr.Date, pr.Time = parts[0], parts[1]
	}

	if raw, err := json.Marshal(payload); err == nil {
		pr.raw = raw
	}

	return pr
}

// Load fetches the linked issue and attaches its labels, moving the record
// into the loaded state. Calling it again re-fetches; wasteful but safe.
func (p *PullRequest) Load(ctx context.Context, issues IssueFetcher) error {
	issue, err := issues.Issue(ctx, p.IssueURL)
	if err != nil {
		return fmt.Errorf("failed to load issue for %s#%d: %w", p.RepoFullName, p.Number, err)
	}

	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, strings.ToLower(l.GetName()))
	}

	p.labels = labels
	p.loaded = true

	return nil
}

// Loaded reports whether the linked issue's labels have been attached.
func (p *PullRequest) Loaded() bool { return p.loaded }

// Labels returns the lower-cased label names of the linked issue.
func (p *PullRequest) Labels() []string { return p.labels }

// Recipients returns the identities eligible to claim this pull request:
// the assignees, or the author when there are none. Never empty.
func (p *PullRequest) Recipients() []string {
	return Recipients(p.Assignees, p.AuthorLogin)
}

// ClaimableBy reports whether login appears in the recipient list. This is
// the only authorization gate in the system.
func (p *PullRequest) ClaimableBy(login string) bool {
	for _, r := range p.Recipients() {
		if r == login {
			return true
		}
	}

	return false
}

// Claimed reports whether the claimed marker label is present. Meaningful
// only on a loaded record; an unloaded record answers false.
func (p *PullRequest) Claimed() bool {
	for _, l := range p.labels {
		if l == p.rules.ClaimedLabel {
			return true
		}
	}

	return false
}

// Amount returns the kredits amount derived from the issue labels, 0 when
// no amount label matches. Meaningful only on a loaded record.
func (p *PullRequest) Amount() int {
	return p.rules.Amounts.Resolve(p.labels)
}

// Valid reports whether a contribution may be issued for this pull
// request: it is merged, not yet claimed, and carries a non-zero amount.
func (p *PullRequest) Valid() bool {
	return p.Merged && !p.Claimed() && p.Amount() > 0
}

// ContributionAttributes projects the loaded record into a contribution
// write-intent. The recipient is supplied by each flow per target
// identity. The projection is pure: repeated calls yield identical
// results.
func (p *PullRequest) ContributionAttributes() (Contribution, error) {
	if !p.loaded {
		return Contribution{}, apperrors.ErrNotLoaded
	}

	return Contribution{
		Date:        p.Date,
		Time:        p.Time,
		Amount:      p.Amount(),
		Description: fmt.Sprintf("%s: %s", p.RepoFullName, p.Title),
		URL:         p.WebURL,
		Details:     p.raw,
		Kind:        "dev",
	}, nil
}
