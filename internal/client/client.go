// Package client is a Go client for the auth-core HTTP API. It plays the
// session-manager role: it holds the session token, attaches it as a bearer
// credential on protected calls, and keeps a locally-decoded view of the
// current user for gating. The local view is advisory only, since the server
// re-verifies the token on every request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/siuupriyanshu/auth-core/internal/domain"
)

// Session is the locally-decoded view of the signed-in user. Claims are
// parsed without signature verification; treat them as UI hints, not proof.
type Session struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token looks expired locally. Advisory only.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Client talks to the auth-core API.
type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.Mutex
	token   string
	session *Session
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type authData struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) Register(ctx context.Context, email, password, confirmPassword string) error {
	_, err := c.do(ctx, http.MethodPost, "/register", domain.RegisterRequest{
		Email: email, Password: password, ConfirmPassword: confirmPassword,
	}, false)
	return err
}

// Login authenticates and stores the returned session token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.User, error) {
	env, err := c.do(ctx, http.MethodPost, "/login", domain.LoginRequest{Email: email, Password: password}, false)
	if err != nil {
		return nil, err
	}
	var data authData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	c.setToken(data.Token)
	return data.User, nil
}

func (c *Client) VerifyEmail(ctx context.Context, email, token string) error {
	_, err := c.do(ctx, http.MethodPost, "/verify-email", domain.VerifyEmailRequest{Email: email, Token: token}, false)
	return err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/forgot-password", domain.ForgotPasswordRequest{Email: email}, false)
	return err
}

func (c *Client) ResetPassword(ctx context.Context, email, token, newPassword, confirmPassword string) error {
	_, err := c.do(ctx, http.MethodPost, "/reset-password", domain.ResetPasswordRequest{
		Email: email, Token: token, NewPassword: newPassword, ConfirmPassword: confirmPassword,
	}, false)
	return err
}

// Me fetches the authoritative current user from the server.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/me", nil, true)
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := json.Unmarshal(env.Data, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// Logout tells the server and always clears local state, even when the
// server call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/logout", nil, true)
	c.mu.Lock()
	c.token = ""
	c.session = nil
	c.mu.Unlock()
	return err
}

// CurrentUser returns the locally-decoded session, or nil when signed out.
func (c *Client) CurrentUser() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Token returns the raw session token, empty when signed out.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SetToken installs an externally-obtained token (e.g. restored from disk)
// and decodes its claims for the local session view.
func (c *Client) SetToken(token string) {
	c.setToken(token)
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.session = decodeSession(token)
}

// decodeSession parses claims without verifying the signature. The server is
// the authority; this only feeds local gating.
func decodeSession(token string) *Session {
	var claims struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Role   string `json:"role"`
		jwt.RegisteredClaims
	}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	s := &Session{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, withAuth bool) (*envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if withAuth {
		if tok := c.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}
