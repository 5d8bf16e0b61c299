package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"jirams/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(r http.Handler, path string, payload any, token string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRegisterUserValidation(t *testing.T) {
	setupTestApp(t)

	assert.Error(t, RegisterUser("not-an-email", "bob", "secret123", ""))
	assert.Error(t, RegisterUser("bob@example.com", "", "secret123", ""))
	assert.Error(t, RegisterUser("bob@example.com", "bob", "short", ""))
	assert.Error(t, RegisterUser("bob@example.com", "bob", "secret123", "SUPERUSER"))

	require.NoError(t, RegisterUser("Bob@Example.com", "bob", "secret123", ""))

	// email was lowercased on the way in
	var user models.User
	require.NoError(t, db.Preload("Role").Where("email = ?", "bob@example.com").First(&user).Error)
	assert.Equal(t, models.RoleCivilian, user.RoleName())
	assert.True(t, user.Active)

	// duplicates by email and by username
	assert.EqualError(t, RegisterUser("bob@example.com", "bob2", "secret123", ""), "user already exists")
	assert.EqualError(t, RegisterUser("other@example.com", "bob", "secret123", ""), "user already exists")
}

func TestAuthenticate(t *testing.T) {
	setupTestApp(t)
	user := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)

	got, err := Authenticate("Alice@Example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, models.RoleCivilian, got.RoleName())

	_, err = Authenticate("alice@example.com", "wrong")
	assert.Error(t, err)
	_, err = Authenticate("nobody@example.com", "secret123")
	assert.Error(t, err)
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	setupTestApp(t)
	user := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)
	require.NoError(t, db.Model(user).Update("active", false).Error)

	_, err := Authenticate("alice@example.com", "secret123")
	assert.EqualError(t, err, "account disabled")
}

func TestTokenEndpointAndProtectedRoute(t *testing.T) {
	r := setupTestApp(t)
	createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)

	rec := postJSON(r, "/auth/token", map[string]string{"email": "alice@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(r, "/auth/token", map[string]string{"email": "alice@example.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	access, _ := resp["access_token"].(string)
	refresh, _ := resp["refresh_token"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.Equal(t, "bearer", resp["token_type"])

	// identity comes from the token, not from any request parameter
	req, _ := http.NewRequest(http.MethodGet, "/me?email=registrar@courts.com", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	meRec := httptest.NewRecorder()
	r.ServeHTTP(meRec, req)
	require.Equal(t, http.StatusOK, meRec.Code)
	var me map[string]any
	require.NoError(t, json.Unmarshal(meRec.Body.Bytes(), &me))
	assert.Equal(t, "alice@example.com", me["email"])
	assert.Equal(t, models.RoleCivilian, me["role"])

	// no token at all
	noAuth := httptest.NewRecorder()
	bare, _ := http.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(noAuth, bare)
	assert.Equal(t, http.StatusUnauthorized, noAuth.Code)
}

func TestRefreshTokenRotation(t *testing.T) {
	r := setupTestApp(t)
	createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)

	rec := postJSON(r, "/auth/token", map[string]string{"email": "alice@example.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	refresh := resp["refresh_token"].(string)

	rec = postJSON(r, "/auth/refresh", map[string]string{"refresh_token": refresh}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rotated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	newRefresh := rotated["refresh_token"].(string)
	assert.NotEmpty(t, rotated["access_token"])
	assert.NotEqual(t, refresh, newRefresh)

	// the old token was revoked by the rotation
	rec = postJSON(r, "/auth/refresh", map[string]string{"refresh_token": refresh}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// revoke the new one, then it stops working too
	rec = postJSON(r, "/auth/revoke", map[string]string{"refresh_token": newRefresh}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = postJSON(r, "/auth/refresh", map[string]string{"refresh_token": newRefresh}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterEndpointConflict(t *testing.T) {
	r := setupTestApp(t)

	payload := map[string]string{"email": "carol@example.com", "username": "carol", "password": "secret123"}
	rec := postJSON(r, "/auth/register", payload, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = postJSON(r, "/auth/register", payload, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = postJSON(r, "/auth/register", map[string]string{"email": "dave@example.com", "username": "dave", "password": "secret123", "role": "judge"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var user models.User
	require.NoError(t, db.Preload("Role").Where("email = ?", "dave@example.com").First(&user).Error)
	assert.Equal(t, models.RoleJudge, user.RoleName())
}
