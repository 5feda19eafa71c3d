package database

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// TipStatus is the settlement state of a tip.
type TipStatus string

const (
	TipStatusPending TipStatus = "pending"
	TipStatusWon     TipStatus = "won"
	TipStatusLost    TipStatus = "lost"
	TipStatusVoid    TipStatus = "void"
)

// Tip is the betting recommendation of one calendar day.
type Tip struct {
	ID             uint `gorm:"primarykey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Date           string `gorm:"uniqueIndex;size:10;not null"` // YYYY-MM-DD
	League         string
	Match          string
	Prediction     string
	Odds           string
	Reasoning      string `gorm:"type:text"`
	MemberMessage  string `gorm:"type:text"`
	MatchTime      string
	Status         TipStatus `gorm:"size:16;default:pending;index"`
	IsPublished    bool      `gorm:"default:false"`
	ScannedMatches int
}

// UpsertTipByDate writes tip as the only tip of tip.Date.
// An existing tip keeps its ID and gets all content overwritten, while
// publication and status are always reset.
func (c *Client) UpsertTipByDate(ctx context.Context, tip *Tip) (*Tip, error) {
	var out Tip
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Tip
		err := tx.Where("date = ?", tip.Date).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			out = *tip
			out.ID = 0
			out.Status = TipStatusPending
			out.IsPublished = false
			return tx.Create(&out).Error
		case err != nil:
			return err
		}

		out = existing
		out.League = tip.League
		out.Match = tip.Match
		out.Prediction = tip.Prediction
		out.Odds = tip.Odds
		out.Reasoning = tip.Reasoning
		out.MemberMessage = tip.MemberMessage
		out.MatchTime = tip.MatchTime
		out.ScannedMatches = tip.ScannedMatches
		out.Status = TipStatusPending
		out.IsPublished = false
		return tx.Save(&out).Error
	})
	if err != nil {
		log.Error("failed to upsert tip", "date", tip.Date, "error", err)
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTipByDate(ctx context.Context, date string) (*Tip, error) {
	var tip Tip
	if err := c.db.WithContext(ctx).Where("date = ?", date).First(&tip).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get tip by date", "error", err)
		}
		return nil, notFound(err)
	}
	return &tip, nil
}

// GetTips returns the newest tips first.
func (c *Client) GetTips(ctx context.Context, limit int) ([]Tip, error) {
	var tips []Tip
	if err := c.db.WithContext(ctx).Order("date DESC").Limit(limit).Find(&tips).Error; err != nil {
		log.Error("failed to get tips", "error", err)
		return nil, err
	}
	return tips, nil
}

func (c *Client) GetPublishedTipsByStatus(ctx context.Context, status TipStatus, limit int) ([]Tip, error) {
	var tips []Tip
	if err := c.db.WithContext(ctx).
		Where("status = ? AND is_published = ?", status, true).
		Order("date DESC").Limit(limit).Find(&tips).Error; err != nil {
		log.Error("failed to get published tips", "status", status, "error", err)
		return nil, err
	}
	return tips, nil
}

// PublishTip marks a tip as published. The status is left untouched.
func (c *Client) PublishTip(ctx context.Context, id uint) (*Tip, error) {
	var tip Tip
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tip, id).Error; err != nil {
			return err
		}
		tip.IsPublished = true
		return tx.Model(&tip).Update("is_published", true).Error
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to publish tip", "id", id, "error", err)
		}
		return nil, notFound(err)
	}
	return &tip, nil
}
