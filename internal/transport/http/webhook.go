package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-github/v39/github"
	"github.com/kredits/oracle/internal/apperrors"
)

// decodePullRequestEvent normalizes the two delivery shapes GitHub hooks
// arrive in — the event object at the body root, or a JSON-encoded string
// under a "payload" field — into one canonical event before any core
// logic sees it.
func decodePullRequestEvent(r *http.Request) (*github.PullRequestEvent, error) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook body: %w", err)
	}

	var envelope struct {
		Payload string `json:"payload"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Payload != "" {
		body = []byte(envelope.Payload)
	}

	var evt github.PullRequestEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return &evt, nil
}

// registerRequest carries the submitted registration form.
type registerRequest struct {
	Account string `validate:"omitempty,eth_account"`
}
