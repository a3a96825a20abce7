package models

// MinFeedbackLength is the shortest feedback the backend accepts.
const MinFeedbackLength = 10

type Feedback struct {
	// Feedback content
	Feedback string `json:"feedback"`
}
