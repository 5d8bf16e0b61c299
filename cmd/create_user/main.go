package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"jirams/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("usage: go run ./cmd/create_user <email> <username> <password> [role]")
		os.Exit(2)
	}
	email := strings.ToLower(strings.TrimSpace(os.Args[1]))
	username := os.Args[2]
	password := os.Args[3]
	roleName := models.RoleCivilian
	if len(os.Args) > 4 {
		roleName = strings.ToUpper(strings.TrimSpace(os.Args[4]))
	}
	if !models.KnownRole(roleName) {
		log.Fatalf("unknown role: %s", roleName)
	}

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	var role models.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		log.Fatalf("role %s not seeded, run the migrate command first", roleName)
	}

	var existing models.User
	if err := db.Where("email = ?", email).Or("username = ?", username).
		First(&existing).Error; err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", existing.Email, existing.ID)
		os.Exit(0)
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	rid := role.ID
	user := models.User{
		Email:          email,
		Username:       username,
		HashedPassword: hpw,
		Active:         true,
		RoleID:         &rid,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s id=%d role=%s\n", user.Email, user.ID, roleName)
}
