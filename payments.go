package main

import (
	"net/http"
	"strings"

	"jirams/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func normalizePaymentStatus(raw string) (string, bool) {
	switch st := strings.ToUpper(strings.TrimSpace(raw)); st {
	case models.PaymentPending, models.PaymentCompleted, models.PaymentFailed:
		return st, true
	}
	return "", false
}

func paymentResponse(p *models.Payment) gin.H {
	resp := gin.H{
		"id":           p.ID,
		"case_id":      p.CaseID,
		"amount":       p.Amount,
		"payment_type": p.PaymentType,
		"status":       p.Status,
		"reference":    p.Reference,
		"created_at":   p.CreatedAt,
	}
	if p.Payer != nil {
		resp["payer"] = p.Payer.Email
	}
	return resp
}

func paymentList(items []models.Payment) []gin.H {
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, paymentResponse(&items[i]))
	}
	return out
}

// makePaymentHandler records a fee payment against a case. The payer is
// always the authenticated user; a reference is generated when omitted.
func makePaymentHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		CaseID      uint    `json:"case_id" binding:"required"`
		Amount      float64 `json:"amount" binding:"required"`
		PaymentType string  `json:"payment_type" binding:"required"`
		Reference   string  `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	var cs models.Case
	if err := db.First(&cs, req.CaseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}
	ref := strings.TrimSpace(req.Reference)
	if ref == "" {
		ref = "REF-" + uuid.NewString()
	}
	p := models.Payment{
		CaseID:      cs.ID,
		PayerID:     user.ID,
		Amount:      req.Amount,
		PaymentType: req.PaymentType,
		Status:      models.PaymentPending,
		Reference:   ref,
	}
	if err := db.Create(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	p.Payer = user
	c.JSON(http.StatusOK, paymentResponse(&p))
}

// listPaymentsHandler returns every payment. Admin roles only.
func listPaymentsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !isAuthorized(user.RoleName(), adminRoles()...) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	var items []models.Payment
	if err := db.Preload("Payer").Order("created_at desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, paymentList(items))
}

// myPaymentsHandler returns payments made by the authenticated user.
func myPaymentsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var items []models.Payment
	if err := db.Preload("Payer").Where("payer_id = ?", user.ID).
		Order("created_at desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, paymentList(items))
}

// casePaymentsHandler returns payments recorded against one case.
func casePaymentsHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var items []models.Payment
	if err := db.Preload("Payer").Where("case_id = ?", id).
		Order("created_at desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, paymentList(items))
}

// updatePaymentHandler moves a payment through its lifecycle. Registrar only.
func updatePaymentHandler(c *gin.Context) {
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
	var p models.Payment
	if err := db.First(&p, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, valid := normalizePaymentStatus(req.Status)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment status"})
		return
	}
	p.Status = st
	if err := db.Save(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	db.Preload("Payer").First(&p, p.ID)
	c.JSON(http.StatusOK, paymentResponse(&p))
}

// deletePaymentHandler removes a payment record. Registrar only.
func deletePaymentHandler(c *gin.Context) {
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
	var p models.Payment
	if err := db.First(&p, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	if err := db.Delete(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment deleted successfully"})
}
