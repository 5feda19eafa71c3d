package models

import (
	"time"

	"github.com/jon4hz/foxtip/internal/cache"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/scheduler"
)

// User is the signed-in account as shown in the UI.
type User struct {
	ID               uint
	Email            string
	FullName         string
	IsAdmin          bool
	HasLicense       bool
	LicenseExpiry    *time.Time
	StartingBankroll float64
	CurrentBankroll  float64
	GravatarURL      string // empty if avatars are disabled
}

// DisplayName returns the full name, or the email if no name was given.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// Tip is a daily tip as shown in the UI.
type Tip struct {
	ID             uint
	Date           string
	League         string
	Match          string
	Prediction     string
	Odds           string
	Reasoning      string
	MemberMessage  string
	MatchTime      string
	Status         database.TipStatus
	IsPublished    bool
	ScannedMatches int
	UpdatedAt      time.Time
}

// ChatMessage is one line of the admin chat.
type ChatMessage struct {
	Sender    string
	Text      string
	Timestamp time.Time
	FromAdmin bool
}

// DashboardData is everything the member dashboard renders.
type DashboardData struct {
	User           User
	Today          string
	TodayTip       *Tip // nil unless visible to the user
	PendingTips    []Tip
	SuggestedStake int64
	Quote          string
}

// AdminData is everything the admin panel renders.
type AdminData struct {
	User          User
	Today         string
	Users         []User
	Tips          []Tip
	Chat          []ChatMessage
	Jobs          []scheduler.JobInfo
	Stats         *database.Stats
	Caches        []*cache.Stats
	AssistantName string
}
