package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ClientTestSuite struct {
	suite.Suite
	client *Client
	ctx    context.Context
}

func (s *ClientTestSuite) SetupTest() {
	client, err := New(filepath.Join(s.T().TempDir(), "foxtip.db"))
	s.Require().NoError(err)
	s.client = client
	s.ctx = context.Background()
}

func (s *ClientTestSuite) TearDownTest() {
	s.NoError(s.client.Close())
}

func (s *ClientTestSuite) TestCreateUser_NormalizesEmail() {
	user := &User{Email: "  Alice@Example.COM ", PasswordHash: "hash"}
	s.Require().NoError(s.client.CreateUser(s.ctx, user))
	s.Equal("alice@example.com", user.Email)
	s.Equal(UserRoleMember, user.Role)

	got, err := s.client.GetUserByEmail(s.ctx, "ALICE@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, got.ID)
	s.False(got.HasLicense)
}

func (s *ClientTestSuite) TestCreateUser_Duplicate() {
	s.Require().NoError(s.client.CreateUser(s.ctx, &User{Email: "bob@example.com", PasswordHash: "x"}))
	err := s.client.CreateUser(s.ctx, &User{Email: "BOB@example.com", PasswordHash: "y"})
	s.ErrorIs(err, ErrDuplicate)
}

func (s *ClientTestSuite) TestGetUser_NotFound() {
	_, err := s.client.GetUserByID(s.ctx, 42)
	s.ErrorIs(err, ErrNotFound)
	_, err = s.client.GetUserByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, ErrNotFound)
}

func (s *ClientTestSuite) TestLicenseLifecycle() {
	user := &User{Email: "carol@example.com", PasswordHash: "x"}
	s.Require().NoError(s.client.CreateUser(s.ctx, user))

	past := time.Now().Add(-time.Hour)
	s.Require().NoError(s.client.UpdateUserLicense(s.ctx, user.ID, true, &past))

	licensed, err := s.client.GetLicensedUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(licensed, 1)

	revoked, err := s.client.RevokeExpiredLicenses(s.ctx, time.Now())
	s.Require().NoError(err)
	s.EqualValues(1, revoked)

	got, err := s.client.GetUserByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.False(got.HasLicense)
	s.Nil(got.LicenseExpiry)

	s.ErrorIs(s.client.UpdateUserLicense(s.ctx, 999, true, nil), ErrNotFound)
}

func (s *ClientTestSuite) TestUpsertTipByDate_OverwritesAndResets() {
	first, err := s.client.UpsertTipByDate(s.ctx, &Tip{
		Date:           "2026-10-18",
		League:         "Premier League",
		Match:          "Arsenal vs Chelsea",
		Odds:           "1.85",
		ScannedMatches: 300,
	})
	s.Require().NoError(err)
	s.Equal(TipStatusPending, first.Status)

	published, err := s.client.PublishTip(s.ctx, first.ID)
	s.Require().NoError(err)
	s.True(published.IsPublished)
	s.Equal(TipStatusPending, published.Status)

	second, err := s.client.UpsertTipByDate(s.ctx, &Tip{
		Date:           "2026-10-18",
		League:         "La Liga",
		Match:          "Real Madrid vs Sevilla",
		Odds:           "1.50",
		ScannedMatches: 120,
		IsPublished:    true,
		Status:         TipStatusWon,
	})
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	got, err := s.client.GetTipByDate(s.ctx, "2026-10-18")
	s.Require().NoError(err)
	s.Equal("La Liga", got.League)
	s.Equal("Real Madrid vs Sevilla", got.Match)
	s.Equal(120, got.ScannedMatches)
	s.False(got.IsPublished)
	s.Equal(TipStatusPending, got.Status)

	tips, err := s.client.GetTips(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(tips, 1)
}

func (s *ClientTestSuite) TestPublishTip_NotFound() {
	_, err := s.client.PublishTip(s.ctx, 7)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ClientTestSuite) TestGetPublishedTipsByStatus() {
	a, err := s.client.UpsertTipByDate(s.ctx, &Tip{Date: "2026-10-16"})
	s.Require().NoError(err)
	_, err = s.client.UpsertTipByDate(s.ctx, &Tip{Date: "2026-10-17"})
	s.Require().NoError(err)
	_, err = s.client.PublishTip(s.ctx, a.ID)
	s.Require().NoError(err)

	tips, err := s.client.GetPublishedTipsByStatus(s.ctx, TipStatusPending, 10)
	s.Require().NoError(err)
	s.Require().Len(tips, 1)
	s.Equal("2026-10-16", tips[0].Date)
}

func (s *ClientTestSuite) TestRecentChatMessages_NewestFirst() {
	base := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	for i, text := range []string{"one", "two", "three"} {
		s.Require().NoError(s.client.CreateChatMessage(s.ctx, &ChatMessage{
			Sender:    "System",
			Text:      text,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	msgs, err := s.client.GetRecentChatMessages(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(msgs, 2)
	s.Equal("three", msgs[0].Text)
	s.Equal("two", msgs[1].Text)
}

func (s *ClientTestSuite) TestGetStats() {
	s.Require().NoError(s.client.CreateUser(s.ctx, &User{Email: "dave@example.com", PasswordHash: "x", HasLicense: true}))
	_, err := s.client.UpsertTipByDate(s.ctx, &Tip{Date: "2026-10-18"})
	s.Require().NoError(err)
	s.Require().NoError(s.client.CreateChatMessage(s.ctx, &ChatMessage{Sender: "System", Text: "hi"}))

	stats, err := s.client.GetStats(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, stats.Users)
	s.EqualValues(1, stats.LicensedUsers)
	s.EqualValues(1, stats.Tips)
	s.EqualValues(0, stats.PublishedTips)
	s.EqualValues(1, stats.ChatMessages)
	s.Equal("2026-10-18", stats.LatestTipDate)
	s.NotNil(stats.LatestChatEntry)
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}
