package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/siuupriyanshu/auth-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, userID, email, role string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"sub":     userID,
		"exp":     exp.Unix(),
		"iat":     time.Now().Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return tok
}

func newTestServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "correct-password" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"user":  domain.User{UserID: "u1", Email: req.Email},
				"token": token,
			},
		})
	})
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "unauthorized"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    domain.User{UserID: "u1", Email: "a@b.com", Role: "user"},
		})
	})
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		// Server-side failure; the client must still drop local state.
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "internal server error"})
	})
	return httptest.NewServer(mux)
}

func TestLogin_StoresTokenAndDecodesSession(t *testing.T) {
	exp := time.Now().Add(7 * 24 * time.Hour)
	tok := signTestToken(t, "u1", "a@b.com", "admin", exp)
	srv := newTestServer(t, tok)
	defer srv.Close()

	c := New(srv.URL)
	u, err := c.Login(context.Background(), "a@b.com", "correct-password")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	assert.Equal(t, tok, c.Token())

	sess := c.CurrentUser()
	require.NotNil(t, sess)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "a@b.com", sess.Email)
	assert.Equal(t, "admin", sess.Role)
	assert.WithinDuration(t, exp, sess.ExpiresAt, time.Second)
	assert.False(t, sess.Expired())
}

func TestLogin_Failure_NoTokenStored(t *testing.T) {
	srv := newTestServer(t, signTestToken(t, "u1", "a@b.com", "user", time.Now().Add(time.Hour)))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Empty(t, c.Token())
	assert.Nil(t, c.CurrentUser())
}

func TestMe_AttachesBearerToken(t *testing.T) {
	tok := signTestToken(t, "u1", "a@b.com", "user", time.Now().Add(time.Hour))
	srv := newTestServer(t, tok)
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "a@b.com", "correct-password")
	require.NoError(t, err)

	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
}

func TestMe_WithoutToken_Unauthorized(t *testing.T) {
	srv := newTestServer(t, signTestToken(t, "u1", "a@b.com", "user", time.Now().Add(time.Hour)))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Me(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestLogout_ClearsLocalStateEvenOnServerError(t *testing.T) {
	tok := signTestToken(t, "u1", "a@b.com", "user", time.Now().Add(time.Hour))
	srv := newTestServer(t, tok)
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "a@b.com", "correct-password")
	require.NoError(t, err)
	require.NotEmpty(t, c.Token())

	err = c.Logout(context.Background())
	assert.Error(t, err) // server returned 500
	assert.Empty(t, c.Token())
	assert.Nil(t, c.CurrentUser())
}

func TestSetToken_RestoresSession(t *testing.T) {
	tok := signTestToken(t, "u2", "b@c.com", "user", time.Now().Add(time.Hour))
	c := New("http://unused")
	c.SetToken(tok)

	sess := c.CurrentUser()
	require.NotNil(t, sess)
	assert.Equal(t, "u2", sess.UserID)
}

func TestSetToken_Garbage_NoSession(t *testing.T) {
	c := New("http://unused")
	c.SetToken("not-a-jwt")
	assert.Nil(t, c.CurrentUser())
}

func TestSession_Expired_Advisory(t *testing.T) {
	tok := signTestToken(t, "u1", "a@b.com", "user", time.Now().Add(-time.Hour))
	c := New("http://unused")
	c.SetToken(tok)

	sess := c.CurrentUser()
	require.NotNil(t, sess)
	assert.True(t, sess.Expired())
	// Expiry is advisory: the token stays attached, the server decides.
	assert.Equal(t, tok, c.Token())
}
