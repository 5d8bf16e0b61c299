package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"jirams/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte // loaded from config in main

const accessTokenTTL = 30 * time.Minute

func setupRoutes(r *gin.Engine) {
	r.GET("/health", healthHandler)

	authRoutes := r.Group("/auth")
	authRoutes.POST("/register", registerHandler)
	authRoutes.POST("/token", tokenHandler)
	authRoutes.POST("/refresh", refreshHandler)
	authRoutes.POST("/revoke", revokeRefreshHandler)

	protected := r.Group("")
	protected.Use(jwtAuthMiddleware())
	protected.GET("/me", meHandler)

	cases := protected.Group("/cases")
	cases.POST("", fileCaseHandler)
	cases.GET("", listCasesHandler)
	cases.GET("/mine", myCasesHandler)
	cases.PUT("/:id", adminUpdateCaseHandler)
	cases.PUT("/:id/civilian", civilianUpdateCaseHandler)
	cases.DELETE("/:id", deleteCaseHandler)
	cases.GET("/:id/status", caseStatusHandler)
	cases.POST("/notes", addCaseNoteHandler)
	cases.GET("/:id/notes", listCaseNotesHandler)

	evidence := protected.Group("/evidence")
	evidence.POST("", uploadEvidenceHandler)
	evidence.GET("", listEvidenceHandler)
	evidence.GET("/mine", myEvidenceHandler)
	evidence.GET("/case/:id", caseEvidenceHandler)
	evidence.PUT("/:id/review", reviewEvidenceHandler)
	evidence.DELETE("/:id", deleteEvidenceHandler)

	documents := protected.Group("/documents")
	documents.POST("", uploadDocumentHandler)
	documents.GET("", listDocumentsHandler)
	documents.GET("/mine", myDocumentsHandler)
	documents.GET("/case/:id", caseDocumentsHandler)
	documents.DELETE("/:id", deleteDocumentHandler)

	hearings := protected.Group("/hearings")
	hearings.POST("", scheduleHearingHandler)
	hearings.GET("", listHearingsHandler)
	hearings.GET("/case/:id", caseHearingsHandler)
	hearings.GET("/judge/:id", judgeHearingsHandler)
	hearings.PUT("/:id", updateHearingHandler)
	hearings.DELETE("/:id", deleteHearingHandler)

	payments := protected.Group("/payments")
	payments.POST("", makePaymentHandler)
	payments.GET("", listPaymentsHandler)
	payments.GET("/mine", myPaymentsHandler)
	payments.GET("/case/:id", casePaymentsHandler)
	payments.PUT("/:id", updatePaymentHandler)
	payments.DELETE("/:id", deletePaymentHandler)

	users := protected.Group("/users")
	users.GET("", listUsersHandler)
	users.PUT("/:id/role", updateUserRoleHandler)
	users.PUT("/:id/active", toggleUserActiveHandler)
	users.DELETE("/:id", deleteUserHandler)
}

// isAuthorized is the role gate: pure, never errors. Callers translate a
// false result into a 403.
func isAuthorized(actorRole string, allowed ...string) bool {
	for _, r := range allowed {
		if actorRole == r {
			return true
		}
	}
	return false
}

func adminRoles() []string {
	return []string{models.RoleRegistrar, models.RoleJudge, models.RoleProsecutor}
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// jwtAuthMiddleware validates the bearer token and stores the subject email
// and role claim into the request context. All identity decisions downstream
// derive from these, never from request parameters.
func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		email, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)
		c.Set("email", email)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

// getUserFromContext fetches the currently authenticated user using the email
// set by jwtAuthMiddleware.
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	emailVal, _ := c.Get("email")
	if emailVal == nil {
		return nil, false
	}
	email := emailVal.(string)
	var user models.User
	if err := db.Preload("Role").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, false
	}
	if !user.Active {
		return nil, false
	}
	return &user, true
}

// parseIDParam reads a numeric :id path parameter.
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func meHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"email":    user.Email,
		"username": user.Username,
		"role":     user.RoleName(),
	})
}

func registerHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterUser(req.Email, req.Username, req.Password, req.Role); err != nil {
		status := http.StatusBadRequest
		if err.Error() == "user already exists" {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func signAccessToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.Email,
		"role": user.RoleName(),
		"exp":  time.Now().Add(accessTokenTTL).Unix(),
	})
	return token.SignedString(jwtSecret)
}

func tokenHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	tokenString, err := signAccessToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokenString,
		"token_type":    "bearer",
		"refresh_token": refreshToken,
		"user": gin.H{
			"email": user.Email,
			"role":  user.RoleName(),
		},
	})
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func createAndStoreRefreshToken(userID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	rt := models.RefreshToken{UserID: userID, TokenHash: th, ExpiresAt: time.Now().Add(30 * 24 * time.Hour)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

func findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", th).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.Preload("Role").First(&user, rt.UserID).Error; err != nil || !user.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	tokenString, err := signAccessToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate refresh token: revoke existing and create new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": tokenString, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}
