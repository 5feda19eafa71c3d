package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jon4hz/foxtip/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("duplicate record")
)

// DB is the storage used by the engine and the api.
type DB interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	GetLicensedUsers(ctx context.Context) ([]User, error)
	UpdateUserLicense(ctx context.Context, id uint, hasLicense bool, expiry *time.Time) error
	UpdateUserRole(ctx context.Context, id uint, role UserRole) error
	RevokeExpiredLicenses(ctx context.Context, now time.Time) (int64, error)

	// Tips
	UpsertTipByDate(ctx context.Context, tip *Tip) (*Tip, error)
	GetTipByDate(ctx context.Context, date string) (*Tip, error)
	GetTips(ctx context.Context, limit int) ([]Tip, error)
	GetPublishedTipsByStatus(ctx context.Context, status TipStatus, limit int) ([]Tip, error)
	PublishTip(ctx context.Context, id uint) (*Tip, error)

	// Chat log
	CreateChatMessage(ctx context.Context, msg *ChatMessage) error
	GetRecentChatMessages(ctx context.Context, limit int) ([]ChatMessage, error)

	// Statistics
	GetStats(ctx context.Context) (*Stats, error)
}

var _ DB = (*Client)(nil) // Ensure Client implements DB

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// Open prepares a database handle for the configured driver.
// It does not contact the database, so a broken store does not prevent startup.
func Open(cfg *config.DatabaseConfig) (*Client, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DatabaseDriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	default:
		dialector = sqlite.Open(cfg.Path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableAutomaticPing: true,
		TranslateError:       true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Client{db: db}, nil
}

// New opens a sqlite database at dbpath and performs migrations.
func New(dbpath string) (*Client, error) {
	c, err := Open(&config.DatabaseConfig{Driver: config.DatabaseDriverSQLite, Path: dbpath})
	if err != nil {
		return nil, err
	}
	if err := c.Migrate(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// Migrate creates or updates the schema.
func (c *Client) Migrate(ctx context.Context) error {
	if err := c.db.WithContext(ctx).AutoMigrate(
		&User{},
		&Tip{},
		&ChatMessage{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Stats summarizes the store contents.
type Stats struct {
	Users           int64
	LicensedUsers   int64
	Tips            int64
	PublishedTips   int64
	ChatMessages    int64
	LatestTipDate   string
	LatestChatEntry *time.Time
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var s Stats
	db := c.db.WithContext(ctx)
	counts := []struct {
		query *gorm.DB
		dst   *int64
	}{
		{db.Model(&User{}), &s.Users},
		{db.Model(&User{}).Where("has_license = ?", true), &s.LicensedUsers},
		{db.Model(&Tip{}), &s.Tips},
		{db.Model(&Tip{}).Where("is_published = ?", true), &s.PublishedTips},
		{db.Model(&ChatMessage{}), &s.ChatMessages},
	}
	for _, q := range counts {
		if err := q.query.Count(q.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to count records: %w", err)
		}
	}

	var latest Tip
	if err := db.Order("date DESC").Limit(1).Find(&latest).Error; err != nil {
		return nil, fmt.Errorf("failed to get latest tip: %w", err)
	}
	s.LatestTipDate = latest.Date

	var msg ChatMessage
	if err := db.Order("timestamp DESC").Limit(1).Find(&msg).Error; err != nil {
		return nil, fmt.Errorf("failed to get latest chat message: %w", err)
	}
	if msg.ID != 0 {
		s.LatestChatEntry = &msg.Timestamp
	}
	return &s, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
