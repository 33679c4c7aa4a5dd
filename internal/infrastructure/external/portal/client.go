// Package portal implements the HTTP client for the WCU academic portal.
// The portal has no session persistence worth keeping: every operation logs
// in with the student's credentials, fetches what it needs and lets the
// session expire. Calls are wrapped in retry and a circuit breaker; during
// registration-period peaks the portal is slow and occasionally down.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/internal/domain/portal"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/pkg/circuitbreaker"
	"github.com/dagmawi-lencho/WCU-Student-Assistant-Bot/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the portal client.
type ClientConfig struct {
	// BaseURL is the portal root (default: https://portal.wcu.edu.et)
	BaseURL string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// Logger for structured logging
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: "https://portal.wcu.edu.et",
		Timeout: 30 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client talks to the WCU portal. It implements the domain portal.Gateway.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a portal client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://portal.wcu.edu.et"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	logger := config.Logger

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		retrier: retry.PortalRetrier(),
		breaker: circuitbreaker.PortalBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
			// A wrong password is the student's mistake, not a portal
			// outage; it must never open the circuit for everyone else.
			circuitbreaker.WithIsFailure(func(err error) bool {
				return !errors.Is(err, domain.ErrAuthRejected)
			})),
		logger: logger,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// GATEWAY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// profileResponse is the portal's profile payload.
type profileResponse struct {
	Message  string `json:"message,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Text     string `json:"text,omitempty"`
}

// gradesResponse is the portal's grade payload: the report rows exactly as
// the portal renders them, one string per line.
type gradesResponse struct {
	Lines []string `json:"lines"`
}

// FetchProfile implements portal.Gateway.
func (c *Client) FetchProfile(ctx context.Context, creds domain.Credentials) (*domain.Profile, error) {
	var resp profileResponse
	err := c.authenticated(ctx, "fetch profile", creds, "/api/student/profile", &resp)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.Message == domain.GraduateNotice:
		return &domain.Profile{Kind: domain.ProfileGraduate}, nil
	case resp.PhotoURL != "":
		return &domain.Profile{
			Kind:     domain.ProfileWithPhoto,
			PhotoURL: resp.PhotoURL,
			Caption:  resp.Caption,
		}, nil
	default:
		return &domain.Profile{Kind: domain.ProfilePlain, Text: resp.Text}, nil
	}
}

// FetchGrades implements portal.Gateway.
func (c *Client) FetchGrades(ctx context.Context, creds domain.Credentials) ([]string, error) {
	var resp gradesResponse
	err := c.authenticated(ctx, "fetch grades", creds, "/api/student/grades", &resp)
	if err != nil {
		return nil, err
	}
	return resp.Lines, nil
}

// authenticated runs login + GET as one guarded operation: the breaker sees
// it as a single request, and a retry repeats the whole round trip with a
// fresh session.
func (c *Client) authenticated(ctx context.Context, op string, creds domain.Credentials, path string, result interface{}) error {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			session, err := c.login(ctx, creds)
			if err != nil {
				return err
			}
			return c.get(ctx, path, session, result)
		})
	})
	if err != nil {
		c.logger.Error("portal request failed",
			slog.String("op", op),
			slog.String("error", err.Error()))
		return &domain.GatewayError{Op: op, Err: err}
	}
	return nil
}

// login authenticates and returns the session cookies.
func (c *Client) login(ctx context.Context, creds domain.Credentials) ([]*http.Cookie, error) {
	form := url.Values{}
	form.Set("campus", creds.Campus)
	form.Set("student_id", creds.StudentID)
	form.Set("password", creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/api/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create login request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retry.Retryable(fmt.Errorf("login request: %w", err))
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Cookies(), nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Bad credentials never get better on retry.
		return nil, retry.Permanent(fmt.Errorf("%w (status %d)", domain.ErrAuthRejected, resp.StatusCode))
	case resp.StatusCode >= 500:
		return nil, retry.Retryable(fmt.Errorf("portal unavailable (status %d)", resp.StatusCode))
	default:
		return nil, retry.Permanent(fmt.Errorf("unexpected login status %d", resp.StatusCode))
	}
}

// get performs an authenticated GET and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, session []*http.Cookie, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	for _, cookie := range session {
		req.AddCookie(cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Retryable(fmt.Errorf("portal request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return retry.Retryable(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return retry.Retryable(fmt.Errorf("portal unavailable (status %d)", resp.StatusCode))
	default:
		return retry.Permanent(fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return retry.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}
