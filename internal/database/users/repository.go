// Package users provides database operations for accounts and their auth tokens.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	token, err := repo.GetOrCreateToken(user.ID)
package users

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookstore/internal/entities"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("a user with that username already exists")
	ErrTokenNotFound = errors.New("token not found")
)

// tokenBytes yields a 40 character hex key.
const tokenBytes = 20

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a user. The password must already be hashed.
func (r *Repository) CreateUser(user *entities.User) error {
	if _, err := r.GetUserByUsername(user.Username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, userErr(err)
	}
	return &user, nil
}

// UserExists reports whether a user with id exists.
func (r *Repository) UserExists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// TouchLastLogin records a successful login.
func (r *Repository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&entities.User{ID: id}).Update("last_login_at", at).Error
}

// GetOrCreateToken returns the user's token, creating one on first use.
func (r *Repository) GetOrCreateToken(userID uint) (*entities.AuthToken, error) {
	var token entities.AuthToken
	err := r.db.Where("user_id = ?", userID).First(&token).Error
	if err == nil {
		return &token, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	key, err := generateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	token = entities.AuthToken{Key: key, UserID: userID}

	// A concurrent login may have won the race; fall back to its token.
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&token)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var existing entities.AuthToken
		if err := r.db.Where("user_id = ?", userID).First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	return &token, nil
}

// GetToken retrieves a token with its owning user.
func (r *Repository) GetToken(key string) (*entities.AuthToken, error) {
	if key == "" {
		return nil, ErrTokenNotFound
	}
	var token entities.AuthToken
	if err := r.db.Preload("User").Where(&entities.AuthToken{Key: key}).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

// DeleteTokensForUser revokes every token of the user.
func (r *Repository) DeleteTokensForUser(userID uint) (int64, error) {
	result := r.db.Where("user_id = ?", userID).Delete(&entities.AuthToken{})
	return result.RowsAffected, result.Error
}

// DeleteTokensCreatedBefore removes tokens older than cutoff.
func (r *Repository) DeleteTokensCreatedBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.AuthToken{})
	return result.RowsAffected, result.Error
}

func userErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

func generateKey() (string, error) {
	bytes := make([]byte, tokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
