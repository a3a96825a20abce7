package api

import "github.com/AnshRaj112/serenify-vent/internal/models"

// CreateVentRequest represents the request to create a vent message
type CreateVentRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"` // Optional - for logged-in users
}

// CreateVentResponse carries either the stored vent or a moderation signal
type CreateVentResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Vent    *models.Vent `json:"vent,omitempty"`
	Warning bool         `json:"warning,omitempty"`
	Blocked bool         `json:"blocked,omitempty"`
}

// ListVentsParams selects a page of a user's vents, newest first
type ListVentsParams struct {
	UserID string
	Limit  int
	Skip   int
}

// ListVentsResponse represents the response for getting vents
type ListVentsResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Vents   []models.Vent `json:"vents"`
	HasMore bool          `json:"has_more"`
	Total   int64         `json:"total"`
}

// SubmitFeedbackRequest represents the request to submit feedback
type SubmitFeedbackRequest = models.Feedback

// SubmitFeedbackResponse represents the response after submitting feedback
type SubmitFeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	RecoveryEmail string `json:"recovery_email,omitempty"` // Optional but recommended
}

// AuthResponse returns only anonymous data
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
}
