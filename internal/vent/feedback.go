package vent

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/AnshRaj112/serenify-vent/internal/api"
	"github.com/AnshRaj112/serenify-vent/internal/models"
)

// SubmitFeedback sends the feedback form and returns the server's reply.
func (c *Controller) SubmitFeedback(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < models.MinFeedbackLength {
		return "", ErrFeedbackTooShort
	}

	resp, err := c.api.SubmitFeedback(ctx, api.SubmitFeedbackRequest{Feedback: text})
	if err != nil {
		if apiErr, ok := api.AsError(err); ok && apiErr.Status < 500 {
			return "", apiErr
		}
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if !resp.Success {
		return "", fmt.Errorf("%w: %s", ErrTransport, resp.Message)
	}

	c.mu.Lock()
	c.session.heuristics.feedbackFired = true
	c.mu.Unlock()
	c.view.NudgeDismissed(NudgeFeedback)
	return resp.Message, nil
}
