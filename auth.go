package main

import (
	"fmt"
	"strings"

	"jirams/models"

	"golang.org/x/crypto/bcrypt"
)

// RegisterUser creates an account with the given role (CIVILIAN when empty).
func RegisterUser(email, username, password, roleName string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("valid email required")
	}
	if username == "" {
		return fmt.Errorf("username required")
	}
	if len(password) < 6 { // basic password policy
		return fmt.Errorf("password too short (min 6)")
	}
	roleName = strings.ToUpper(strings.TrimSpace(roleName))
	if roleName == "" {
		roleName = models.RoleCivilian
	}
	if !models.KnownRole(roleName) {
		return fmt.Errorf("unknown role %q", roleName)
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := db.Where("email = ?", email).Or("username = ?", username).First(&existing).Error; err == nil {
		return fmt.Errorf("user already exists")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	var role models.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		return fmt.Errorf("role %s not seeded", roleName)
	}
	rid := role.ID
	user := models.User{Email: email, Username: username, HashedPassword: hashedPassword, RoleID: &rid}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return fmt.Errorf("user already exists")
		}
		return err
	}
	return nil
}

// Authenticate verifies credentials and returns the user with its role loaded.
func Authenticate(email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := db.Preload("Role").Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	if !user.Active {
		return models.User{}, fmt.Errorf("account disabled")
	}
	return user, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "UNIQUE constraint") || strings.Contains(s, "already exists")
}
