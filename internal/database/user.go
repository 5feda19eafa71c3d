package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// UserRole is the capability level of an account.
type UserRole string

const (
	UserRoleMember UserRole = "member"
	UserRoleAdmin  UserRole = "admin"
)

// User represents a registered member.
type User struct {
	ID               uint      `gorm:"primarykey"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Email            string   `gorm:"uniqueIndex;size:255;not null"`
	FullName         string   `gorm:"size:255"`
	PasswordHash     string   `gorm:"not null"`
	Role             UserRole `gorm:"size:16;default:member;not null"`
	HasLicense       bool     `gorm:"default:false;index"`
	LicenseExpiry    *time.Time
	StartingBankroll float64
	CurrentBankroll  float64
}

// IsAdmin reports whether the stored role grants admin access.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c *Client) CreateUser(ctx context.Context, user *User) error {
	user.Email = NormalizeEmail(user.Email)
	if user.Role == "" {
		user.Role = UserRoleMember
	}
	if err := c.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		log.Error("failed to create user", "error", err)
		return err
	}
	return nil
}

func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get user by ID", "error", err)
		}
		return nil, notFound(err)
	}
	return &user, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get user by email", "error", err)
		}
		return nil, notFound(err)
	}
	return &user, nil
}

func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		log.Error("failed to get all users", "error", err)
		return nil, err
	}
	return users, nil
}

func (c *Client) GetLicensedUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.db.WithContext(ctx).Where("has_license = ?", true).Find(&users).Error; err != nil {
		log.Error("failed to get licensed users", "error", err)
		return nil, err
	}
	return users, nil
}

func (c *Client) UpdateUserLicense(ctx context.Context, id uint, hasLicense bool, expiry *time.Time) error {
	result := c.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(map[string]any{
		"has_license":    hasLicense,
		"license_expiry": expiry,
	})
	if result.Error != nil {
		log.Error("failed to update user license", "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Client) UpdateUserRole(ctx context.Context, id uint, role UserRole) error {
	result := c.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		log.Error("failed to update user role", "error", result.Error)
		return result.Error
	}
	return nil
}

// RevokeExpiredLicenses removes every license whose expiry lies before now.
func (c *Client) RevokeExpiredLicenses(ctx context.Context, now time.Time) (int64, error) {
	result := c.db.WithContext(ctx).Model(&User{}).
		Where("has_license = ? AND license_expiry IS NOT NULL AND license_expiry < ?", true, now).
		Updates(map[string]any{
			"has_license":    false,
			"license_expiry": nil,
		})
	if result.Error != nil {
		log.Error("failed to revoke expired licenses", "error", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// isDuplicateKey also matches raw driver messages, in case a dialector does not translate errors.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}
