package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	email := uniqueEmail("auth")

	// Register
	resp := ts.request(t, "POST", "/auth/register", map[string]interface{}{
		"full_name": "Ada Obi",
		"email":     email,
		"password":  "password1234",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.True(t, resp.IsSuccess())

	user := resp.Data["user"].(map[string]interface{})
	assert.Equal(t, email, user["email"])
	assert.Equal(t, false, user["is_staff"])

	tokens := resp.Data["tokens"].(map[string]interface{})
	assert.NotEmpty(t, tokens["access_token"])
	assert.NotEmpty(t, tokens["refresh_token"])

	// Duplicate registration conflicts
	dup := ts.request(t, "POST", "/auth/register", map[string]interface{}{
		"full_name": "Ada Obi",
		"email":     email,
		"password":  "password1234",
	}, "")
	assert.Equal(t, http.StatusConflict, dup.Code)

	// Login
	login := ts.request(t, "POST", "/auth/login", map[string]interface{}{
		"email":    email,
		"password": "password1234",
	}, "")
	assert.Equal(t, http.StatusOK, login.Code)
	assert.NotEmpty(t, login.GetString("access_token"))

	// Wrong password is a generic 401
	bad := ts.request(t, "POST", "/auth/login", map[string]interface{}{
		"email":    email,
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, "incorrect email or password", bad.Message)

	// Refresh
	refresh := ts.request(t, "POST", "/auth/refresh", map[string]interface{}{
		"refresh_token": tokens["refresh_token"],
	}, "")
	assert.Equal(t, http.StatusOK, refresh.Code)
	assert.NotEmpty(t, refresh.GetString("access_token"))

	// Logout needs a token
	anon := ts.request(t, "POST", "/auth/logout", nil, "")
	assert.Equal(t, http.StatusUnauthorized, anon.Code)

	out := ts.request(t, "POST", "/auth/logout", nil, login.GetString("access_token"))
	assert.Equal(t, http.StatusOK, out.Code)
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, "GET", "/medical-id", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
