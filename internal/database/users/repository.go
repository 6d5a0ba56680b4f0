// Package users provides database operations for user accounts.
//
// Authentication happens outside the core; this repository only maintains
// the rows the library join table references.
package users

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dexbook/dexbook/internal/database"
	"github.com/dexbook/dexbook/internal/entities"
)

// ErrDuplicate is returned when the username or email is already taken.
var ErrDuplicate = errors.New("username or email already taken")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new user with a bcrypt-hashed password.
func (r *Repository) Create(username, email, password string) (*entities.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := r.db.Create(user).Error; err != nil {
		if database.IsUniqueConstraint(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether a user with the given email already exists.
func (r *Repository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
