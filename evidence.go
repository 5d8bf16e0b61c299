package main

import (
	"net/http"
	"path/filepath"
	"strings"

	"jirams/models"

	"github.com/gin-gonic/gin"
)

func evidenceResponse(e *models.Evidence, caseTitle string) gin.H {
	uploader := ""
	if e.Uploader != nil {
		uploader = e.Uploader.Email
	}
	return gin.H{
		"id":             e.ID,
		"filename":       e.Filename,
		"file_type":      e.FileType,
		"case_id":        e.CaseID,
		"case_title":     caseTitle,
		"uploader_email": uploader,
		"uploaded_at":    e.CreatedAt,
		"category":       e.Category,
		"status":         e.Status,
		"remarks":        e.Remarks,
		"checksum":       e.Checksum,
	}
}

// uploadEvidenceHandler stores an evidence file for a case. The uploader is
// the authenticated caller.
func uploadEvidenceHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		CaseID   uint   `form:"case_id" binding:"required"`
		Category string `form:"category"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var cs models.Case
	if err := db.First(&cs, req.CaseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	storePath, err := storeUploadedFile(c, evidenceDir, file)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "too large") {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if req.Category == "" {
		req.Category = "General"
	}
	ev := models.Evidence{
		CaseID:     cs.ID,
		UploaderID: user.ID,
		Filename:   filepath.Base(file.Filename),
		StorePath:  storePath,
		FileType:   file.Header.Get("Content-Type"),
		Category:   req.Category,
		Status:     models.EvidencePending,
	}
	if err := db.Create(&ev).Error; err != nil {
		removeStoredFile(storePath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	ev.Uploader = user
	c.JSON(http.StatusOK, evidenceResponse(&ev, cs.Title))
}

// listEvidenceHandler returns all evidence in the system. Admin roles only.
func listEvidenceHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !isAuthorized(user.RoleName(), adminRoles()...) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	var items []models.Evidence
	if err := db.Preload("Uploader").Order("id desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, evidenceList(items))
}

// myEvidenceHandler returns evidence uploaded by the caller.
func myEvidenceHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var items []models.Evidence
	if err := db.Preload("Uploader").Where("uploader_id = ?", user.ID).Order("id desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, evidenceList(items))
}

// caseEvidenceHandler returns all evidence attached to a case.
func caseEvidenceHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var cs models.Case
	if err := db.First(&cs, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}
	var items []models.Evidence
	if err := db.Preload("Uploader").Where("case_id = ?", id).Order("id desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, evidenceResponse(&items[i], cs.Title))
	}
	c.JSON(http.StatusOK, out)
}

func evidenceList(items []models.Evidence) []gin.H {
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, evidenceResponse(&items[i], ""))
	}
	return out
}

// reviewEvidenceHandler lets a judge or registrar set the review outcome.
func reviewEvidenceHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !isAuthorized(user.RoleName(), models.RoleJudge, models.RoleRegistrar) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Status  string `json:"status" binding:"required"`
		Remarks string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	switch status {
	case models.EvidencePending, models.EvidenceApproved, models.EvidenceRejected, models.EvidenceUnderReview:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review status"})
		return
	}
	var ev models.Evidence
	if err := db.Preload("Uploader").First(&ev, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "evidence not found"})
		return
	}
	ev.Status = status
	ev.Remarks = req.Remarks
	if err := db.Save(&ev).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, evidenceResponse(&ev, ""))
}

// deleteEvidenceHandler removes evidence metadata and its stored file.
// Allowed for the uploader or any admin role.
func deleteEvidenceHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var ev models.Evidence
	if err := db.First(&ev, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "evidence not found"})
		return
	}
	if ev.UploaderID != user.ID && !isAuthorized(user.RoleName(), adminRoles()...) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if err := db.Delete(&ev).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	removeStoredFile(ev.StorePath)
	c.JSON(http.StatusOK, gin.H{"message": "evidence deleted successfully"})
}
