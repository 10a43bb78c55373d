package server

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/branchd-dev/starter/internal/auth"
	"github.com/branchd-dev/starter/internal/models"
)

// SeedUser is an account created on startup when its email is not taken
type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// DefaultSeedUsers are created when no seed file is configured
var DefaultSeedUsers = []SeedUser{
	{Name: "Demo User", Email: "demo@example.com", Password: "demo123"},
}

// loadSeedUsers reads a YAML seed file of the form
//
//	users:
//	  - name: Demo User
//	    email: demo@example.com
//	    password: demo123
func loadSeedUsers(path string) ([]SeedUser, error) {
	if path == "" {
		return DefaultSeedUsers, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	for i, u := range file.Users {
		if u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("seed file %s: user %d needs an email and a password", path, i+1)
		}
	}
	return file.Users, nil
}

// seedUsers creates the given accounts, leaving existing emails untouched
func seedUsers(db *gorm.DB, users []SeedUser, zlog zerolog.Logger) error {
	for _, u := range users {
		var existing models.User
		err := db.Where("email = ?", u.Email).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up seed user %s: %w", u.Email, err)
		}

		passwordHash, err := auth.HashPassword(u.Password)
		if err != nil {
			return err
		}

		user := &models.User{Email: u.Email, Name: u.Name, PasswordHash: passwordHash}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create seed user %s: %w", u.Email, err)
		}
		zlog.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("Seeded user")
	}
	return nil
}
