package backend

import (
	"context"
	"fmt"
	"net/http"
)

// ValidationStatus is the moderation verdict for user-submitted text.
type ValidationStatus string

const (
	StatusApproved      ValidationStatus = "approved"
	StatusPendingReview ValidationStatus = "pending_review"
	StatusRejected      ValidationStatus = "rejected"
)

type Validation struct {
	Status ValidationStatus `json:"status"`
	Reason string           `json:"reason,omitempty"`
}

// ValidateContent asks the backend moderation endpoint to classify text.
// kind names what is being checked, e.g. "event" or "post". Unknown
// verdicts are treated as pending review.
func (c *Client) ValidateContent(ctx context.Context, kind, text string) (*Validation, error) {
	req := map[string]string{
		"type":    kind,
		"content": text,
	}

	var v Validation
	if err := c.Do(ctx, http.MethodPost, "/validation/content", req, &v); err != nil {
		return nil, fmt.Errorf("failed to validate %s content: %w", kind, err)
	}

	switch v.Status {
	case StatusApproved, StatusPendingReview, StatusRejected:
	default:
		v.Status = StatusPendingReview
	}
	return &v, nil
}
