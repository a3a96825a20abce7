package vent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AnshRaj112/serenify-vent/internal/api"
	"github.com/AnshRaj112/serenify-vent/pkg/utils"
)

var errMissingCredentials = &utils.ValidationError{Field: "username", Message: "Username and password are required"}

// Signin checks credentials with the backend and switches to that user.
func (c *Controller) Signin(ctx context.Context, username, password string) (SendResult, error) {
	username = utils.NormalizeUsername(username)
	if username == "" || password == "" {
		return SendResult{}, errMissingCredentials
	}

	resp, err := c.api.Signin(ctx, api.SigninRequest{Username: username, Password: password})
	if err != nil {
		return SendResult{}, authError(err)
	}
	if resp.User == nil || !resp.User.Valid() {
		return SendResult{}, fmt.Errorf("%w: %s", ErrInvalidUser, resp.Message)
	}
	return c.Authenticate(ctx, *resp.User)
}

// Signup creates an anonymous account and switches to it.
func (c *Controller) Signup(ctx context.Context, username, password, recoveryEmail string) (SendResult, error) {
	username = utils.NormalizeUsername(username)
	if err := utils.ValidateUsername(username); err != nil {
		return SendResult{}, err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return SendResult{}, err
	}

	resp, err := c.api.Signup(ctx, api.SignupRequest{
		Username:      username,
		Password:      password,
		RecoveryEmail: strings.TrimSpace(recoveryEmail),
	})
	if err != nil {
		return SendResult{}, authError(err)
	}
	if resp.User == nil || !resp.User.Valid() {
		return SendResult{}, fmt.Errorf("%w: %s", ErrInvalidUser, resp.Message)
	}
	return c.Authenticate(ctx, *resp.User)
}

// authError passes the backend's 4xx verdict through and wraps everything else.
func authError(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status < 500 {
		return apiErr
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}
