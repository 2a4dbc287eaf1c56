package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrNotInstalled = errors.New("github app not installed for this account")
	ErrUnauthorized = errors.New("no authenticated session or pending claim")
	ErrIneligible   = errors.New("pull request is not eligible for a claim")
	ErrNotLoaded    = errors.New("pull request record is not loaded")

	ErrInvalidRequest = errors.New("invalid request body")
)

// UpstreamStatusError reports an error status from a GitHub fetch.
type UpstreamStatusError struct {
	URL        string
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream fetch of '%s' failed with status %d", e.URL, e.StatusCode)
}

// LedgerWriteError wraps a rejected or failed contributor/contribution write.
type LedgerWriteError struct {
	Op  string
	Err error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("ledger write failed in %s: %v", e.Op, e.Err)
}
func (e *LedgerWriteError) Unwrap() error { return e.Err }

// IneligibleError names why a pull request can not be claimed. Callers
// that hold the offending record pass it along separately so error views
// can show diagnostics.
type IneligibleError struct{ Reason string }

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("pull request can not be claimed: %s", e.Reason)
}
func (e *IneligibleError) Is(target error) bool { return target == ErrIneligible }
