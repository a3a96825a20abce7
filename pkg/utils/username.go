package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
	MinPasswordLength = 8
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

var startsAlphanumeric = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	first := rune(s[0])
	if !(unicode.IsLetter(first) || unicode.IsNumber(first)) {
		return errors.New("Username must start with a letter or number")
	}
	return nil
})

// ValidateUsername validates username format before it is sent to signup.
// Rules: 3-20 characters, letters, numbers, underscores only
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)

	err := validation.Validate(username,
		validation.Required.Error("Username must be at least 3 characters"),
		validation.Length(MinUsernameLength, 0).Error("Username must be at least 3 characters"),
		validation.Length(0, MaxUsernameLength).Error("Username must be at most 20 characters"),
		validation.Match(usernameRegex).Error("Username can only contain letters, numbers, and underscores"),
		startsAlphanumeric,
	)
	return asValidationError("username", err)
}

// ValidatePassword applies the backend's minimum length rule.
func ValidatePassword(password string) error {
	err := validation.Validate(password,
		validation.Required.Error("Password is required"),
		validation.Length(MinPasswordLength, 0).Error("Password must be at least 8 characters"),
	)
	return asValidationError("password", err)
}

// NormalizeUsername converts username to lowercase, matching how the backend stores it
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func asValidationError(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}
