package main

import (
	"fmt"
	"os"
	"path/filepath"

	"jirams/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var db *gorm.DB

func initDB(cfg *Config) error {
	if cfg.DSN == "" {
		return fmt.Errorf("DB_DSN is not set; a Postgres DSN is required")
	}
	var err error
	db, err = gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect postgres database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := migrateAll(db); err != nil {
			return err
		}
	}
	if err := seedRoles(db); err != nil {
		return err
	}
	if err := seedDefaultUsers(db); err != nil {
		return err
	}
	return ensureUploadDirs(cfg.UploadBase)
}

// migrateAll runs AutoMigrate in dependency order: the roles master table
// first so the users FK can be applied safely, then everything else.
func migrateAll(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&models.Role{}); err != nil {
		return fmt.Errorf("migration failed (roles): %w", err)
	}
	for _, m := range []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.Case{},
		&models.CaseNote{},
		&models.Evidence{},
		&models.Document{},
		&models.Hearing{},
		&models.Payment{},
	} {
		if err := gdb.AutoMigrate(m); err != nil {
			return fmt.Errorf("migration failed (%T): %w", m, err)
		}
	}
	return nil
}

// seedRoles ensures the closed role set exists (idempotent).
func seedRoles(gdb *gorm.DB) error {
	roles := []models.Role{
		{Name: models.RoleCivilian, Description: "files and tracks own cases"},
		{Name: models.RoleRegistrar, Description: "court registry operations"},
		{Name: models.RoleJudge, Description: "presides over hearings"},
		{Name: models.RoleProsecutor, Description: "prosecution side"},
	}
	for _, r := range roles {
		var cnt int64
		gdb.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			if err := gdb.Create(&r).Error; err != nil {
				return fmt.Errorf("failed to seed role %s: %w", r.Name, err)
			}
		}
	}
	return nil
}

// seedDefaultUsers creates one account per role so a fresh install is usable
// immediately. Existing accounts are left untouched.
func seedDefaultUsers(gdb *gorm.DB) error {
	defaults := []struct {
		email    string
		username string
		password string
		role     string
	}{
		{"civilian@courts.com", "civilian", "ci1234", models.RoleCivilian},
		{"registrar@courts.com", "registrar", "re1234", models.RoleRegistrar},
		{"judge@courts.com", "judge", "ju1234", models.RoleJudge},
		{"prosecutor@courts.com", "prosecutor", "po1234", models.RoleProsecutor},
	}
	for _, d := range defaults {
		var cnt int64
		gdb.Model(&models.User{}).Where("email = ?", d.email).Count(&cnt)
		if cnt > 0 {
			continue
		}
		var role models.Role
		if err := gdb.Where("name = ?", d.role).First(&role).Error; err != nil {
			return fmt.Errorf("failed to find role %s: %w", d.role, err)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		rid := role.ID
		user := models.User{
			Email:          d.email,
			Username:       d.username,
			HashedPassword: hashed,
			RoleID:         &rid,
		}
		if err := gdb.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", d.email, err)
		}
	}
	return nil
}

// ensureUploadDirs creates the evidence and document subdirectories under the
// upload base.
func ensureUploadDirs(base string) error {
	for _, sub := range []string{evidenceDir, documentDir} {
		if err := os.MkdirAll(filepath.Join(base, sub), 0o755); err != nil {
			return fmt.Errorf("failed to create upload dir %s: %w", sub, err)
		}
	}
	return nil
}

// uploadBaseDir returns the base directory for local uploads.
func uploadBaseDir() string {
	if cfg != nil && cfg.UploadBase != "" {
		return cfg.UploadBase
	}
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}
