package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"jirams/models"

	"github.com/gin-gonic/gin"
	cache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// statusCache serves the hot GET /cases/:id/status path; entries are dropped
// on every status write.
var statusCache *cache.Cache

func statusCacheKey(caseID uint) string {
	return fmt.Sprintf("case_status:%d", caseID)
}

func caseResponse(cs *models.Case) gin.H {
	resp := gin.H{
		"id":          cs.ID,
		"title":       cs.Title,
		"description": cs.Description,
		"category":    cs.Category,
		"notes":       cs.Notes,
		"status":      cs.Status,
		"created_at":  cs.CreatedAt,
		"created_by":  nil,
		"assigned_to": nil,
	}
	if cs.CreatedBy != nil {
		resp["created_by"] = cs.CreatedBy.Email
	}
	if cs.AssignedTo != nil {
		resp["assigned_to"] = cs.AssignedTo.Email
	}
	return resp
}

func caseResponses(cases []models.Case) []gin.H {
	out := make([]gin.H, 0, len(cases))
	for i := range cases {
		out = append(out, caseResponse(&cases[i]))
	}
	return out
}

// fileCaseHandler files a new case for the authenticated user.
func fileCaseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Notes       string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Category == "" {
		req.Category = "General"
	}
	uid := user.ID
	cs := models.Case{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Notes:       req.Notes,
		Status:      StatusPending,
		CreatedByID: &uid,
	}
	if err := db.Create(&cs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	cs.CreatedBy = user
	c.JSON(http.StatusOK, caseResponse(&cs))
}

// listCasesHandler returns every case. Admin roles only.
func listCasesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !isAuthorized(user.RoleName(), adminRoles()...) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	var cases []models.Case
	if err := db.Preload("CreatedBy").Preload("AssignedTo").Order("id desc").Find(&cases).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, caseResponses(cases))
}

// myCasesHandler returns cases the user filed or is assigned to.
func myCasesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var cases []models.Case
	if err := db.Preload("CreatedBy").Preload("AssignedTo").
		Where("created_by_id = ? OR assigned_to_id = ?", user.ID, user.ID).
		Order("id desc").Find(&cases).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, caseResponses(cases))
}

// adminUpdateCaseHandler routes a status/assignment update through the
// lifecycle manager. The REVIEWED transition schedules a hearing.
func adminUpdateCaseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Status       string `json:"status"`
		AssignedToID *uint  `json:"assigned_to_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cs, hearing, err := applyStatusUpdate(db, id, statusUpdate{Status: req.Status, AssignedToID: req.AssignedToID}, user)
	if err != nil {
		switch {
		case errors.Is(err, ErrCaseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		case errors.Is(err, ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}
	statusCache.Delete(statusCacheKey(cs.ID))

	db.Preload("CreatedBy").Preload("AssignedTo").First(cs, cs.ID)
	resp := caseResponse(cs)
	if hearing != nil {
		resp["hearing_id"] = hearing.ID
	}
	c.JSON(http.StatusOK, resp)
}

// civilianUpdateCaseHandler is the narrow self-service path: the creator may
// amend title/description/category/notes while the case is still pre-review.
func civilianUpdateCaseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var cs models.Case
	if err := db.First(&cs, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}
	if cs.CreatedByID == nil || *cs.CreatedByID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the creator of this case"})
		return
	}
	if !isPreReview(cs.Status) {
		c.JSON(http.StatusForbidden, gin.H{"error": "case is already under review"})
		return
	}
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Notes       string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title != "" {
		cs.Title = req.Title
	}
	if req.Description != "" {
		cs.Description = req.Description
	}
	if req.Category != "" {
		cs.Category = req.Category
	}
	if req.Notes != "" {
		cs.Notes = req.Notes
	}
	if err := db.Save(&cs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	cs.CreatedBy = user
	c.JSON(http.StatusOK, caseResponse(&cs))
}

// deleteCaseCascade removes a case with all of its children inside one
// transaction, including any stored files.
func deleteCaseCascade(gdb *gorm.DB, caseID uint) error {
	var files []string
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var evidence []models.Evidence
		if err := tx.Where("case_id = ?", caseID).Find(&evidence).Error; err != nil {
			return err
		}
		for _, e := range evidence {
			files = append(files, e.StorePath)
		}
		var docs []models.Document
		if err := tx.Where("case_id = ?", caseID).Find(&docs).Error; err != nil {
			return err
		}
		for _, d := range docs {
			files = append(files, d.StorePath)
		}
		for _, m := range []interface{}{
			&models.CaseNote{},
			&models.Evidence{},
			&models.Document{},
			&models.Hearing{},
			&models.Payment{},
		} {
			if err := tx.Where("case_id = ?", caseID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Case{}, caseID).Error
	})
	if err != nil {
		return err
	}
	for _, path := range files {
		if path != "" {
			_ = os.Remove(path)
		}
	}
	return nil
}

// deleteCaseHandler withdraws a case: creator only, pre-review only, cascades.
func deleteCaseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var cs models.Case
	if err := db.First(&cs, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}
	if cs.CreatedByID == nil || *cs.CreatedByID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the creator of this case"})
		return
	}
	if !isPreReview(cs.Status) {
		c.JSON(http.StatusForbidden, gin.H{"error": "case is already under review"})
		return
	}
	if err := deleteCaseCascade(db, cs.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	statusCache.Delete(statusCacheKey(cs.ID))
	c.JSON(http.StatusOK, gin.H{"message": "case deleted successfully"})
}

// caseStatusHandler returns just the status of a case, cached.
func caseStatusHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if v, found := statusCache.Get(statusCacheKey(id)); found {
		c.JSON(http.StatusOK, gin.H{"id": id, "status": v, "cached": true})
		return
	}
	var cs models.Case
	if err := db.Select("id", "status").First(&cs, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}
	statusCache.SetDefault(statusCacheKey(id), cs.Status)
	c.JSON(http.StatusOK, gin.H{"id": cs.ID, "status": cs.Status, "cached": false})
}

// addCaseNoteHandler attaches a note to a case, authored by the caller.
func addCaseNoteHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		CaseID uint   `json:"case_id" binding:"required"`
		Note   string `json:"note" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var cs models.Case
	if err := db.First(&cs, req.CaseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}
	note := models.CaseNote{CaseID: cs.ID, AuthorID: user.ID, Note: req.Note}
	if err := db.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          note.ID,
		"note":        note.Note,
		"author_name": user.Email,
		"created_at":  note.CreatedAt,
	})
}

// listCaseNotesHandler returns all notes for a case, oldest first.
func listCaseNotesHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var notes []models.CaseNote
	if err := db.Preload("Author").Where("case_id = ?", id).Order("id asc").Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(notes))
	for _, n := range notes {
		author := ""
		if n.Author != nil {
			author = n.Author.Email
		}
		out = append(out, gin.H{
			"id":          n.ID,
			"note":        n.Note,
			"author_name": author,
			"created_at":  n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
