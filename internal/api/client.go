// Package api is the client for the Serenify backend's vent, feedback and
// auth endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const defaultTimeout = 10 * time.Second

// Client talks to the backend over HTTP. It is safe for concurrent use.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithRateLimit paces outgoing requests so a stuck key or a scripted session
// cannot trip the backend's per-IP limiter. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a Resty-backed client for baseURL (e.g. http://localhost:8080).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetTimeout(defaultTimeout),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

// CreateVent calls POST /api/vent. Moderation verdicts come back in-band
// (Warning/Blocked) or as an *Error with status 403.
func (c *Client) CreateVent(ctx context.Context, req CreateVentRequest) (*CreateVentResponse, error) {
	var out CreateVentResponse
	if err := c.do(ctx, http.MethodPost, "/api/vent", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVents calls GET /api/vent. Vents come back newest first.
func (c *Client) ListVents(ctx context.Context, p ListVentsParams) (*ListVentsResponse, error) {
	query := map[string]string{
		"user_id": p.UserID,
		"limit":   strconv.Itoa(p.Limit),
		"skip":    strconv.Itoa(p.Skip),
	}
	var out ListVentsResponse
	if err := c.do(ctx, http.MethodGet, "/api/vent", nil, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitFeedback calls POST /api/feedback.
func (c *Client) SubmitFeedback(ctx context.Context, req SubmitFeedbackRequest) (*SubmitFeedbackResponse, error) {
	var out SubmitFeedbackResponse
	if err := c.do(ctx, http.MethodPost, "/api/feedback", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signin calls POST /api/auth/signin.
func (c *Client) Signin(ctx context.Context, req SigninRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup calls POST /api/auth/signup.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, query map[string]string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s %s: rate limit wait: %w", method, path, err)
		}
	}

	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode()).
		Dur("took", time.Since(start)).
		Msg("api request")

	if resp.IsError() {
		return newError(resp.StatusCode(), resp.Body())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
