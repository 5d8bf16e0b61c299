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

func doJSON(r http.Handler, method, path string, payload any, token string) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestFileCaseAndMyCases(t *testing.T) {
	r := setupTestApp(t)
	alice := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)
	bob := createTestUser(t, "bob@example.com", "bob", models.RoleCivilian)

	rec := doJSON(r, http.MethodPost, "/cases", map[string]string{
		"title":       "Noise Complaint",
		"description": "Loud construction at night",
	}, tokenFor(t, alice))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, StatusPending, created["status"])
	assert.Equal(t, "alice@example.com", created["created_by"])
	assert.Equal(t, "General", created["category"])

	// alice sees her case, bob sees none
	rec = doJSON(r, http.MethodGet, "/cases/mine", nil, tokenFor(t, alice))
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)

	rec = doJSON(r, http.MethodGet, "/cases/mine", nil, tokenFor(t, bob))
	require.Equal(t, http.StatusOK, rec.Code)
	var bobs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bobs))
	assert.Len(t, bobs, 0)
}

func TestListCasesRequiresAdminRole(t *testing.T) {
	r := setupTestApp(t)
	alice := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)
	registrar := createTestUser(t, "reg@example.com", "reg", models.RoleRegistrar)
	createTestCase(t, alice, "Noise Complaint", StatusPending)

	rec := doJSON(r, http.MethodGet, "/cases", nil, tokenFor(t, alice))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(r, http.MethodGet, "/cases", nil, tokenFor(t, registrar))
	require.Equal(t, http.StatusOK, rec.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 1)
}

func TestAdminUpdateCaseEndpoint(t *testing.T) {
	r := setupTestApp(t)
	alice := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)
	registrar := createTestUser(t, "reg@example.com", "reg", models.RoleRegistrar)
	cs := createTestCase(t, alice, "Noise Complaint", StatusPending)

	// civilians cannot move status
	rec := doJSON(r, http.MethodPut, "/cases/1", map[string]string{"status": "reviewed"}, tokenFor(t, alice))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// unknown status is rejected before anything is written
	rec = doJSON(r, http.MethodPut, "/cases/1", map[string]string{"status": "archived"}, tokenFor(t, registrar))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(r, http.MethodPut, "/cases/999", map[string]string{"status": "reviewed"}, tokenFor(t, registrar))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(r, http.MethodPut, "/cases/1", map[string]string{"status": "reviewed"}, tokenFor(t, registrar))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusReviewed, resp["status"])
	assert.NotNil(t, resp["hearing_id"])

	var count int64
	db.Model(&models.Hearing{}).Where("case_id = ?", cs.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCivilianUpdateCaseGates(t *testing.T) {
	r := setupTestApp(t)
	alice := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)
	bob := createTestUser(t, "bob@example.com", "bob", models.RoleCivilian)
	cs := createTestCase(t, alice, "Noise Complaint", StatusPending)

	// only the creator may amend
	rec := doJSON(r, http.MethodPut, "/cases/1/civilian", map[string]string{"title": "Hijacked"}, tokenFor(t, bob))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(r, http.MethodPut, "/cases/1/civilian", map[string]string{"title": "Noise Complaint (amended)"}, tokenFor(t, alice))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var fresh models.Case
	require.NoError(t, db.First(&fresh, cs.ID).Error)
	assert.Equal(t, "Noise Complaint (amended)", fresh.Title)

	// once past pre-review the self-service path closes
	require.NoError(t, db.Model(&fresh).Update("status", StatusUnderReview).Error)
	rec = doJSON(r, http.MethodPut, "/cases/1/civilian", map[string]string{"title": "Too late"}, tokenFor(t, alice))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteCaseCascades(t *testing.T) {
	r := setupTestApp(t)
	alice := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)
	registrar := createTestUser(t, "reg@example.com", "reg", models.RoleRegistrar)
	cs := createTestCase(t, alice, "Noise Complaint", StatusPending)

	require.NoError(t, db.Create(&models.CaseNote{CaseID: cs.ID, AuthorID: alice.ID, Note: "first note"}).Error)
	require.NoError(t, db.Create(&models.Payment{CaseID: cs.ID, PayerID: alice.ID, Amount: 50, PaymentType: "FILING_FEE", Status: models.PaymentPending, Reference: "REF-x"}).Error)

	// only the creator may withdraw
	rec := doJSON(r, http.MethodDelete, "/cases/1", nil, tokenFor(t, registrar))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(r, http.MethodDelete, "/cases/1", nil, tokenFor(t, alice))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var caseCount, noteCount, payCount int64
	db.Model(&models.Case{}).Count(&caseCount)
	db.Model(&models.CaseNote{}).Count(&noteCount)
	db.Model(&models.Payment{}).Count(&payCount)
	assert.Zero(t, caseCount)
	assert.Zero(t, noteCount)
	assert.Zero(t, payCount)
}

func TestDeleteCaseBlockedAfterReview(t *testing.T) {
	r := setupTestApp(t)
	alice := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)
	createTestCase(t, alice, "Noise Complaint", StatusUnderReview)

	rec := doJSON(r, http.MethodDelete, "/cases/1", nil, tokenFor(t, alice))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCaseStatusCaching(t *testing.T) {
	r := setupTestApp(t)
	alice := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)
	registrar := createTestUser(t, "reg@example.com", "reg", models.RoleRegistrar)
	createTestCase(t, alice, "Noise Complaint", StatusPending)
	token := tokenFor(t, alice)

	rec := doJSON(r, http.MethodGet, "/cases/1/status", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var first map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, StatusPending, first["status"])
	assert.Equal(t, false, first["cached"])

	rec = doJSON(r, http.MethodGet, "/cases/1/status", nil, token)
	var second map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, true, second["cached"])

	// a status write drops the cache entry
	rec = doJSON(r, http.MethodPut, "/cases/1", map[string]string{"status": "filed"}, tokenFor(t, registrar))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(r, http.MethodGet, "/cases/1/status", nil, token)
	var third map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &third))
	assert.Equal(t, StatusFiled, third["status"])
	assert.Equal(t, false, third["cached"])
}

func TestCaseNotes(t *testing.T) {
	r := setupTestApp(t)
	alice := createTestUser(t, "alice@example.com", "alice", models.RoleCivilian)
	createTestCase(t, alice, "Noise Complaint", StatusPending)
	token := tokenFor(t, alice)

	rec := doJSON(r, http.MethodPost, "/cases/notes", map[string]any{"case_id": 1, "note": "met with registrar"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(r, http.MethodPost, "/cases/notes", map[string]any{"case_id": 999, "note": "nope"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(r, http.MethodGet, "/cases/1/notes", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "met with registrar", notes[0]["note"])
	assert.Equal(t, "alice@example.com", notes[0]["author_name"])
}
