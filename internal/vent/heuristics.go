package vent

import (
	"time"
	"unicode/utf8"
)

// Thresholds tunes the one-shot nudges.
type Thresholds struct {
	LongMessage      int           // runes; a longer message triggers encouragement
	BurstCount       int           // sends within BurstWindow that trigger encouragement
	BurstWindow      time.Duration
	FeedbackAttempts int           // attempt number that triggers the feedback nudge
}

var DefaultThresholds = Thresholds{
	LongMessage:      500,
	BurstCount:       5,
	BurstWindow:      30 * time.Second,
	FeedbackAttempts: 10,
}

type heuristics struct {
	recent             []time.Time
	attempts           int
	encouragementFired bool
	feedbackFired      bool
}

// track records one send attempt and returns the nudges it triggers.
func (h *heuristics) track(t Thresholds, now time.Time, text string) []NudgeKind {
	cutoff := now.Add(-t.BurstWindow)
	kept := h.recent[:0]
	for _, ts := range h.recent {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	h.recent = append(kept, now)
	h.attempts++

	var fired []NudgeKind
	if !h.encouragementFired &&
		(utf8.RuneCountInString(text) > t.LongMessage || len(h.recent) >= t.BurstCount) {
		h.encouragementFired = true
		fired = append(fired, NudgeEncouragement)
	}
	if !h.feedbackFired && h.attempts == t.FeedbackAttempts {
		h.feedbackFired = true
		fired = append(fired, NudgeFeedback)
	}
	return fired
}
