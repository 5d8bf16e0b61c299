package main

import (
	"testing"
	"time"

	"jirams/models"
	"jirams/pkg/logger"

	"github.com/gin-gonic/gin"
	cache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a throwaway in-memory database, migrates and seeds the role
// table, and installs it as the package-level handle the handlers use.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	// each pool connection would get its own in-memory database
	sqlDB.SetMaxOpenConns(1)
	if err := migrateAll(gdb); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	if err := seedRoles(gdb); err != nil {
		t.Fatalf("role seeding failed: %v", err)
	}
	db = gdb
	return gdb
}

// setupTestApp wires a fresh database, config, logger and cache, and returns
// a router with the full route table.
func setupTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	newTestDB(t)
	jwtSecret = []byte("test-secret")
	log = logger.NewNop()
	cfg = &Config{UploadBase: t.TempDir(), StatusCacheTTL: time.Minute}
	statusCache = cache.New(time.Minute, 2*time.Minute)
	r := gin.New()
	setupRoutes(r)
	return r
}

// createTestUser inserts a user with the given role. The password is always
// "secret123".
func createTestUser(t *testing.T, email, username, roleName string) *models.User {
	t.Helper()
	var role models.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		t.Fatalf("role %s not seeded: %v", roleName, err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	rid := role.ID
	user := models.User{
		Email:          email,
		Username:       username,
		HashedPassword: hashed,
		Active:         true,
		RoleID:         &rid,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	user.Role = role
	return &user
}

// tokenFor signs an access token for a user, bypassing the login endpoint.
func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := signAccessToken(user)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// createTestCase files a case directly against the database.
func createTestCase(t *testing.T, creator *models.User, title, status string) *models.Case {
	t.Helper()
	uid := creator.ID
	cs := models.Case{
		Title:       title,
		Category:    "General",
		Status:      status,
		CreatedByID: &uid,
	}
	if err := db.Create(&cs).Error; err != nil {
		t.Fatalf("failed to create case: %v", err)
	}
	return &cs
}
