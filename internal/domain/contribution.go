package domain

import "encoding/json"

// Contribution is the write-intent handed to the ledger once per
// successful eligibility check. It is never mutated after creation;
// ownership transfers to the ledger gateway on write.
type Contribution struct {
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Amount      int             `json:"amount"`
	Description string          `json:"description"`
	URL         string          `json:"url"`
	Kind        string          `json:"kind"`
	Details     json.RawMessage `json:"details,omitempty"`
}
