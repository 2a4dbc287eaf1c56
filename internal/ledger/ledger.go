// package ledger defines the boundary to the external contribution
// ledger. The ledger owns contributors and contributions durably; this
// service only reads or creates them by account identity and never
// mutates existing records.
package ledger

import (
	"context"

	"github.com/kredits/oracle/internal/domain"
)

// Account identifies a contributor on a platform, e.g.
// {Site: "github.com", Username: "alice"}.
type Account struct {
	Site     string `json:"site"`
	Username string `json:"username"`
}

// Contributor is the ledger-owned record referenced when writing a
// contribution. ID and IpfsHash are the ledger-side references.
type Contributor struct {
	ID             int64  `json:"id"`
	IpfsHash       string `json:"ipfsHash"`
	Name           string `json:"name"`
	GithubUsername string `json:"github_username"`
}

// ContributorDraft carries the attributes for creating a contributor from
// an authenticated GitHub profile plus the submitted account address.
type ContributorDraft struct {
	Account        string `json:"account"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	URL            string `json:"url"`
	GithubUsername string `json:"github_username"`
	GithubUID      int64  `json:"github_uid"`
}

// Gateway is the contract with the ledger collaborator.
//
// The ledger's consensus, persistence and accounting guarantees are out of
// scope here; in particular, any idempotency stronger than the advisory
// claimed label must be enforced on the ledger side.
type Gateway interface {
	// FindContributorByAccount looks a contributor up by platform account.
	// It returns apperrors.ErrNotFound when no contributor exists for the
	// account.
	FindContributorByAccount(ctx context.Context, account Account) (*Contributor, error)

	// AddContributor creates a contributor and returns the freshly created
	// ledger record. Failures surface as *apperrors.LedgerWriteError.
	AddContributor(ctx context.Context, draft ContributorDraft) (*Contributor, error)

	// AddContribution issues a contribution against the contributor's
	// (id, ipfsHash) references. Failures surface as
	// *apperrors.LedgerWriteError.
	AddContribution(ctx context.Context, contributor *Contributor, attrs domain.Contribution) error
}
