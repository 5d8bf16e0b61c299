package main

import (
	"net/http"
	"strings"
	"time"

	"jirams/models"

	"github.com/gin-gonic/gin"
)

// normalizeHearingStatus maps a raw hearing status onto the closed set.
func normalizeHearingStatus(raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SCHEDULED":
		return models.HearingScheduled, true
	case "POSTPONED":
		return models.HearingPostponed, true
	case "HELD":
		return models.HearingHeld, true
	}
	return "", false
}

func hearingResponse(h *models.Hearing) gin.H {
	resp := gin.H{
		"id":             h.ID,
		"case_id":        h.CaseID,
		"scheduled_date": h.ScheduledDate,
		"location":       h.Location,
		"status":         h.Status,
		"notes":          h.Notes,
		"judge":          nil,
		"registrar":      nil,
	}
	if h.Case != nil {
		resp["case_title"] = h.Case.Title
	}
	if h.Judge != nil {
		resp["judge"] = h.Judge.Email
	}
	if h.Registrar != nil {
		resp["registrar"] = h.Registrar.Email
	}
	return resp
}

func hearingList(items []models.Hearing) []gin.H {
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, hearingResponse(&items[i]))
	}
	return out
}

// scheduleHearingHandler lets a registrar schedule a hearing manually,
// optionally assigning a judge up front.
func scheduleHearingHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !isAuthorized(user.RoleName(), models.RoleRegistrar) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	var req struct {
		CaseID        uint   `json:"case_id" binding:"required"`
		ScheduledDate string `json:"scheduled_date" binding:"required"`
		Location      string `json:"location" binding:"required"`
		JudgeID       *uint  `json:"judge_id"`
		Notes         string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	when, err := time.Parse(time.RFC3339, req.ScheduledDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_date must be RFC3339"})
		return
	}
	var cs models.Case
	if err := db.First(&cs, req.CaseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}
	if req.JudgeID != nil {
		var judge models.User
		if err := db.Preload("Role").First(&judge, *req.JudgeID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "judge not found"})
			return
		}
		if judge.RoleName() != models.RoleJudge {
			c.JSON(http.StatusBadRequest, gin.H{"error": "assignee is not a judge"})
			return
		}
	}
	h := models.Hearing{
		CaseID:        cs.ID,
		RegistrarID:   user.ID,
		JudgeID:       req.JudgeID,
		ScheduledDate: when,
		Location:      req.Location,
		Status:        models.HearingScheduled,
		Notes:         req.Notes,
	}
	if err := db.Create(&h).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	db.Preload("Case").Preload("Judge").Preload("Registrar").First(&h, h.ID)
	c.JSON(http.StatusOK, hearingResponse(&h))
}

// listHearingsHandler returns every hearing. Admin roles only.
func listHearingsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !isAuthorized(user.RoleName(), adminRoles()...) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	var items []models.Hearing
	if err := db.Preload("Case").Preload("Judge").Preload("Registrar").Order("scheduled_date asc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, hearingList(items))
}

// caseHearingsHandler returns hearings for one case.
func caseHearingsHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var items []models.Hearing
	if err := db.Preload("Case").Preload("Judge").Preload("Registrar").
		Where("case_id = ?", id).Order("scheduled_date asc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, hearingList(items))
}

// judgeHearingsHandler returns hearings assigned to a particular judge.
func judgeHearingsHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var items []models.Hearing
	if err := db.Preload("Case").Preload("Judge").Preload("Registrar").
		Where("judge_id = ?", id).Order("scheduled_date asc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, hearingList(items))
}

// updateHearingHandler updates date, location, notes, status or the judge
// assignment. Registrar or judge only.
func updateHearingHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !isAuthorized(user.RoleName(), models.RoleRegistrar, models.RoleJudge) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var h models.Hearing
	if err := db.First(&h, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "hearing not found"})
		return
	}
	var req struct {
		ScheduledDate string `json:"scheduled_date"`
		Location      string `json:"location"`
		Status        string `json:"status"`
		Notes         string `json:"notes"`
		JudgeID       *uint  `json:"judge_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ScheduledDate != "" {
		when, err := time.Parse(time.RFC3339, req.ScheduledDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_date must be RFC3339"})
			return
		}
		h.ScheduledDate = when
	}
	if req.Location != "" {
		h.Location = req.Location
	}
	if req.Status != "" {
		st, ok := normalizeHearingStatus(req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hearing status"})
			return
		}
		h.Status = st
	}
	if req.Notes != "" {
		h.Notes = req.Notes
	}
	if req.JudgeID != nil {
		var judge models.User
		if err := db.Preload("Role").First(&judge, *req.JudgeID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "judge not found"})
			return
		}
		if judge.RoleName() != models.RoleJudge {
			c.JSON(http.StatusBadRequest, gin.H{"error": "assignee is not a judge"})
			return
		}
		h.JudgeID = req.JudgeID
	}
	if err := db.Save(&h).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	db.Preload("Case").Preload("Judge").Preload("Registrar").First(&h, h.ID)
	c.JSON(http.StatusOK, hearingResponse(&h))
}

// deleteHearingHandler cancels a hearing. Registrar only.
func deleteHearingHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !isAuthorized(user.RoleName(), models.RoleRegistrar) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var h models.Hearing
	if err := db.First(&h, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "hearing not found"})
		return
	}
	if err := db.Delete(&h).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "hearing deleted successfully"})
}
