package main

import (
	"net/http"
	"strings"

	"jirams/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func userResponse(u *models.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"email":    u.Email,
		"username": u.Username,
		"role":     u.RoleName(),
		"active":   u.Active,
	}
}

// listUsersHandler returns all accounts. Registrar only.
func listUsersHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !isAuthorized(user.RoleName(), models.RoleRegistrar) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	var users []models.User
	if err := db.Preload("Role").Order("id asc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// updateUserRoleHandler reassigns an account to a different role.
func updateUserRoleHandler(c *gin.Context) {
	actor, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !isAuthorized(actor.RoleName(), models.RoleRegistrar) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	roleName := strings.ToUpper(strings.TrimSpace(req.Role))
	if !models.KnownRole(roleName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	var target models.User
	if err := db.First(&target, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	var role models.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "role lookup failed"})
		return
	}
	target.RoleID = &role.ID
	if err := db.Save(&target).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	target.Role = role
	c.JSON(http.StatusOK, userResponse(&target))
}

// toggleUserActiveHandler flips an account between active and disabled.
// Disabled accounts fail login and token validation.
func toggleUserActiveHandler(c *gin.Context) {
	actor, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !isAuthorized(actor.RoleName(), models.RoleRegistrar) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var target models.User
	if err := db.Preload("Role").First(&target, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if target.ID == actor.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot disable own account"})
		return
	}
	target.Active = !target.Active
	if err := db.Model(&target).Update("active", target.Active).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, userResponse(&target))
}

// deleteUserHandler removes an account together with everything it owns:
// filed cases cascade through their children, standalone uploads are
// unlinked from disk, refresh tokens are dropped.
func deleteUserHandler(c *gin.Context) {
	actor, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if !isAuthorized(actor.RoleName(), models.RoleRegistrar) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if id == actor.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete own account"})
		return
	}
	var target models.User
	if err := db.First(&target, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var caseIDs []uint
	if err := db.Model(&models.Case{}).Where("created_by_id = ?", target.ID).
		Pluck("id", &caseIDs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	for _, cid := range caseIDs {
		if err := deleteCaseCascade(db, cid); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
			return
		}
	}

	// Uploads against other users' cases survive the case cascade above.
	var paths []string
	db.Model(&models.Evidence{}).Where("uploader_id = ?", target.ID).Pluck("store_path", &paths)
	var docPaths []string
	db.Model(&models.Document{}).Where("uploader_id = ?", target.ID).Pluck("store_path", &docPaths)
	paths = append(paths, docPaths...)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("uploader_id = ?", target.ID).Delete(&models.Evidence{}).Error; err != nil {
			return err
		}
		if err := tx.Where("uploader_id = ?", target.ID).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", target.ID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Case{}).Where("assigned_to_id = ?", target.ID).
			Update("assigned_to_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&target).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	for _, p := range paths {
		removeStoredFile(p)
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}
