package main

import (
	"net/http"
	"path/filepath"
	"strings"

	"jirams/models"

	"github.com/gin-gonic/gin"
)

func documentResponse(d *models.Document, caseTitle string) gin.H {
	uploader := ""
	if d.Uploader != nil {
		uploader = d.Uploader.Email
	}
	return gin.H{
		"id":             d.ID,
		"filename":       d.Filename,
		"file_type":      d.FileType,
		"case_id":        d.CaseID,
		"case_title":     caseTitle,
		"uploader_email": uploader,
		"uploaded_at":    d.CreatedAt,
		"description":    d.Description,
		"checksum":       d.Checksum,
	}
}

// uploadDocumentHandler stores a case document from the authenticated caller.
func uploadDocumentHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		CaseID      uint   `form:"case_id" binding:"required"`
		Description string `form:"description"`
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
	storePath, err := storeUploadedFile(c, documentDir, file)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "too large") {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	doc := models.Document{
		CaseID:      cs.ID,
		UploaderID:  user.ID,
		Filename:    filepath.Base(file.Filename),
		StorePath:   storePath,
		FileType:    file.Header.Get("Content-Type"),
		Description: req.Description,
	}
	if err := db.Create(&doc).Error; err != nil {
		removeStoredFile(storePath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	doc.Uploader = user
	c.JSON(http.StatusOK, documentResponse(&doc, cs.Title))
}

// listDocumentsHandler returns every document. Admin roles only.
func listDocumentsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !isAuthorized(user.RoleName(), adminRoles()...) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	var docs []models.Document
	if err := db.Preload("Uploader").Order("id desc").Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, documentList(docs))
}

// myDocumentsHandler returns documents uploaded by the caller.
func myDocumentsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var docs []models.Document
	if err := db.Preload("Uploader").Where("uploader_id = ?", user.ID).Order("id desc").Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, documentList(docs))
}

// caseDocumentsHandler returns documents attached to a case.
func caseDocumentsHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var cs models.Case
	if err := db.First(&cs, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}
	var docs []models.Document
	if err := db.Preload("Uploader").Where("case_id = ?", id).Order("id desc").Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(docs))
	for i := range docs {
		out = append(out, documentResponse(&docs[i], cs.Title))
	}
	c.JSON(http.StatusOK, out)
}

func documentList(docs []models.Document) []gin.H {
	out := make([]gin.H, 0, len(docs))
	for i := range docs {
		out = append(out, documentResponse(&docs[i], ""))
	}
	return out
}

// deleteDocumentHandler removes a document and its stored file. Allowed for
// the uploader or any admin role.
func deleteDocumentHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var doc models.Document
	if err := db.First(&doc, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	if doc.UploaderID != user.ID && !isAuthorized(user.RoleName(), adminRoles()...) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if err := db.Delete(&doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	removeStoredFile(doc.StorePath)
	c.JSON(http.StatusOK, gin.H{"message": "document deleted successfully"})
}
