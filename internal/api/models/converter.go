package models

import (
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/gravatar"
	"github.com/samber/lo"
)

// AdminChecker decides admin capability.
type AdminChecker interface {
	IsAdmin(*database.User) bool
}

// ToUser converts a database.User to the UI model.
func ToUser(u *database.User, admin AdminChecker, avatars *gravatar.Resolver) User {
	if u == nil {
		return User{}
	}
	return User{
		ID:               u.ID,
		Email:            u.Email,
		FullName:         u.FullName,
		IsAdmin:          admin != nil && admin.IsAdmin(u),
		HasLicense:       u.HasLicense,
		LicenseExpiry:    u.LicenseExpiry,
		StartingBankroll: u.StartingBankroll,
		CurrentBankroll:  u.CurrentBankroll,
		GravatarURL:      avatars.URL(u.Email),
	}
}

// ToUsers converts a slice of database.User.
func ToUsers(users []database.User, admin AdminChecker, avatars *gravatar.Resolver) []User {
	return lo.Map(users, func(u database.User, _ int) User {
		return ToUser(&u, admin, avatars)
	})
}

// ToTip converts a database.Tip to the UI model.
func ToTip(t database.Tip) Tip {
	return Tip{
		ID:             t.ID,
		Date:           t.Date,
		League:         t.League,
		Match:          t.Match,
		Prediction:     t.Prediction,
		Odds:           t.Odds,
		Reasoning:      t.Reasoning,
		MemberMessage:  t.MemberMessage,
		MatchTime:      t.MatchTime,
		Status:         t.Status,
		IsPublished:    t.IsPublished,
		ScannedMatches: t.ScannedMatches,
		UpdatedAt:      t.UpdatedAt,
	}
}

// ToTips converts a slice of database.Tip.
func ToTips(tips []database.Tip) []Tip {
	return lo.Map(tips, func(t database.Tip, _ int) Tip {
		return ToTip(t)
	})
}

// ToChatMessages converts chat log entries. adminSender marks the messages typed by the operator.
func ToChatMessages(msgs []database.ChatMessage, adminSender string) []ChatMessage {
	return lo.Map(msgs, func(m database.ChatMessage, _ int) ChatMessage {
		return ChatMessage{
			Sender:    m.Sender,
			Text:      m.Text,
			Timestamp: m.Timestamp,
			FromAdmin: m.Sender == adminSender,
		}
	})
}
