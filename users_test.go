package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"jirams/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersRegistrarOnly(t *testing.T) {
	r := setupTestApp(t)
	alice := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)
	registrar := createTestUser(t, "reg@example.com", "reg", models.RoleRegistrar)

	rec := doJSON(r, http.MethodGet, "/users", nil, tokenFor(t, alice))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(r, http.MethodGet, "/users", nil, tokenFor(t, registrar))
	require.Equal(t, http.StatusOK, rec.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "alice@example.com", users[0]["email"])
	assert.Equal(t, models.RoleCivilian, users[0]["role"])
	assert.Equal(t, true, users[0]["active"])
}

func TestUpdateUserRole(t *testing.T) {
	r := setupTestApp(t)
	alice := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)
	registrar := createTestUser(t, "reg@example.com", "reg", models.RoleRegistrar)

	rec := doJSON(r, http.MethodPut, "/users/1/role", map[string]string{"role": "WIZARD"}, tokenFor(t, registrar))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(r, http.MethodPut, "/users/1/role", map[string]string{"role": "prosecutor"}, tokenFor(t, registrar))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var fresh models.User
	require.NoError(t, db.Preload("Role").First(&fresh, alice.ID).Error)
	assert.Equal(t, models.RoleProsecutor, fresh.RoleName())
}

func TestToggleUserActive(t *testing.T) {
	r := setupTestApp(t)
	alice := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)
	registrar := createTestUser(t, "reg@example.com", "reg", models.RoleRegistrar)
	aliceToken := tokenFor(t, alice)

	// registrar cannot lock themselves out
	rec := doJSON(r, http.MethodPut, "/users/2/active", nil, tokenFor(t, registrar))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(r, http.MethodPut, "/users/1/active", nil, tokenFor(t, registrar))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var fresh models.User
	require.NoError(t, db.First(&fresh, alice.ID).Error)
	assert.False(t, fresh.Active)

	// a disabled account fails token validation even with a live JWT
	rec = doJSON(r, http.MethodGet, "/me", nil, aliceToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// and fails login
	rec = postJSON(r, "/auth/token", map[string]string{"email": "alice@example.com", "password": "secret123"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// flip back on
	rec = doJSON(r, http.MethodPut, "/users/1/active", nil, tokenFor(t, registrar))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, db.First(&fresh, alice.ID).Error)
	assert.True(t, fresh.Active)
}

func TestDeleteUserCascades(t *testing.T) {
	r := setupTestApp(t)
	alice := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)
	registrar := createTestUser(t, "reg@example.com", "reg", models.RoleRegistrar)
	cs := createTestCase(t, alice, "Noise Complaint", StatusPending)

	require.NoError(t, db.Create(&models.CaseNote{CaseID: cs.ID, AuthorID: alice.ID, Note: "note"}).Error)
	require.NoError(t, db.Create(&models.Payment{CaseID: cs.ID, PayerID: alice.ID, Amount: 10, PaymentType: "FINE", Status: models.PaymentPending, Reference: "REF-z"}).Error)
	_, err := createAndStoreRefreshToken(alice.ID)
	require.NoError(t, err)

	rec := doJSON(r, http.MethodDelete, "/users/2", nil, tokenFor(t, registrar))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "self-delete must be rejected")

	rec = doJSON(r, http.MethodDelete, "/users/1", nil, tokenFor(t, registrar))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var userCount, caseCount, noteCount, payCount, tokenCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Case{}).Count(&caseCount)
	db.Model(&models.CaseNote{}).Count(&noteCount)
	db.Model(&models.Payment{}).Count(&payCount)
	db.Model(&models.RefreshToken{}).Count(&tokenCount)
	assert.EqualValues(t, 1, userCount)
	assert.Zero(t, caseCount)
	assert.Zero(t, noteCount)
	assert.Zero(t, payCount)
	assert.Zero(t, tokenCount)
}
