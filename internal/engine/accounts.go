package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/metrics"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt hashes.
const maxPasswordBytes = 72

// RegisterInput is the registration form.
type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	StartingCapital string
}

// Register creates an unlicensed member account.
func (e *Engine) Register(ctx context.Context, in RegisterInput) (*database.User, error) {
	emailAddr := database.NormalizeEmail(in.Email)
	if emailAddr == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	if _, err := e.db.GetUserByEmail(ctx, emailAddr); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	capital := ParseStartingCapital(in.StartingCapital)
	user := &database.User{
		Email:            emailAddr,
		FullName:         strings.TrimSpace(in.FullName),
		PasswordHash:     string(hash),
		Role:             database.UserRoleMember,
		HasLicense:       false,
		StartingBankroll: capital,
		CurrentBankroll:  capital,
	}
	if err := e.db.CreateUser(ctx, user); err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("User registered", "user", user.ID, "email", user.Email)
	return user, nil
}

// ParseStartingCapital parses a user supplied amount. Missing, invalid or negative input is 0.
func ParseStartingCapital(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Authenticate checks the credentials of a user.
func (e *Engine) Authenticate(ctx context.Context, emailAddr, password string) (*database.User, error) {
	user, err := e.authenticate(ctx, emailAddr, password)
	metrics.RecordLogin(err == nil)
	return user, err
}

func (e *Engine) authenticate(ctx context.Context, emailAddr, password string) (*database.User, error) {
	if strings.TrimSpace(emailAddr) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := e.db.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ToggleLicense flips the license of a user. Enabling starts a new license period.
func (e *Engine) ToggleLicense(ctx context.Context, userID uint) (*database.User, error) {
	user, err := e.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	enable := !user.HasLicense
	var expiry *time.Time
	if enable {
		expiry = lo.ToPtr(e.clock.Now().Add(e.cfg.GetLicenseDuration()))
	}
	if err := e.db.UpdateUserLicense(ctx, user.ID, enable, expiry); err != nil {
		return nil, fmt.Errorf("failed to update license: %w", err)
	}
	user.HasLicense = enable
	user.LicenseExpiry = expiry

	state := "disabled"
	if enable {
		state = "enabled"
	}
	log.Info("License toggled", "user", user.ID, "email", user.Email, "license", state)
	e.logChat(ctx, SenderSystem, fmt.Sprintf("License for %s %s.", user.Email, state))
	return user, nil
}

// ExpireLicenses revokes every license whose expiry has passed.
func (e *Engine) ExpireLicenses(ctx context.Context) error {
	n, err := e.db.RevokeExpiredLicenses(ctx, e.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke expired licenses: %w", err)
	}
	if n > 0 {
		log.Info("Expired licenses revoked", "count", n)
	}
	return nil
}

// PromoteAdmin grants the admin role to an existing account.
func (e *Engine) PromoteAdmin(ctx context.Context, emailAddr string) (*database.User, error) {
	user, err := e.db.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := e.db.UpdateUserRole(ctx, user.ID, database.UserRoleAdmin); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	user.Role = database.UserRoleAdmin
	log.Info("User promoted to admin", "user", user.ID, "email", user.Email)
	return user, nil
}
