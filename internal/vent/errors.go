package vent

import "errors"

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrBlocked          = errors.New("sending is blocked for this session")
	ErrNotAuthenticated = errors.New("not signed in")
	ErrNotGuest         = errors.New("already signed in")
	ErrLoadInProgress   = errors.New("history load already in progress")
	ErrNoMoreHistory    = errors.New("no more history")
	ErrSessionReplaced  = errors.New("session was replaced before the response arrived")
	ErrFeedbackTooShort = errors.New("feedback must be at least 10 characters long")
	ErrInvalidUser      = errors.New("invalid user record")

	// ErrTransport wraps network failures and non-2xx responses that carry
	// no moderation signal. The input is preserved and the call may be retried.
	ErrTransport = errors.New("could not reach the server, please try again")
)
