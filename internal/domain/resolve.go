package domain

import (
	"fmt"
	"regexp"
)

// Rules holds the label interpretation settings. It is built once from
// configuration and passed explicitly into every record; nothing in this
// package reads ambient state.
type Rules struct {
	ClaimedLabel string
	Amounts      AmountResolver
}

// NewRules compiles the amount-label pattern (matched case-insensitively)
// and returns the rule set used to derive amounts and the claimed state.
func NewRules(amountLabelPattern string, amounts map[string]int, claimedLabel string) (Rules, error) {
	re, err := regexp.Compile("(?i)" + amountLabelPattern)
	if err != nil {
		return Rules{}, fmt.Errorf("invalid amount label pattern: %w", err)
	}

	return Rules{
		ClaimedLabel: claimedLabel,
		Amounts: AmountResolver{
			pattern: re,
			amounts: amounts,
		},
	}, nil
}

// AmountResolver maps a set of issue labels to a kredits amount.
type AmountResolver struct {
	pattern *regexp.Regexp
	amounts map[string]int
}

// Resolve returns the amount for the first label, in input order, matching
// the amount-label pattern. The tie-break between multiple matching labels
// is "first encountered" and intentionally arbitrary: it follows whatever
// order the platform returned the labels in. No label, no kredits.
func (r AmountResolver) Resolve(labels []string) int {
	for _, label := range labels {
		if r.pattern.MatchString(label) {
			return r.amounts[label]
		}
	}

	return 0
}

// Recipients returns the identities eligible to receive credit: the
// assignees when any exist, otherwise the author. The result is never
// empty.
func Recipients(assignees []string, author string) []string {
	if len(assignees) > 0 {
		return assignees
	}

	return []string{author}
}
