package model

import (
	"fmt"

	"gorm.io/gorm"
)

// SeedAdmin ensures the bootstrap admin account exists. The caller
// provides the already-hashed password and its salt so this package does
// not depend on the hashing utilities.
func SeedAdmin(db *gorm.DB, hashedPassword, salt string) error {
	var existing User
	err := db.Where("username = ?", "admin").First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	admin := User{
		Username:     "admin",
		Password:     hashedPassword,
		PasswordSalt: salt,
		Role:         RoleAdmin,
		FullName:     "Administrator",
		Email:        "admin@example.com",
		Phone:        "1234567890",
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	return nil
}
