package email

import (
	"testing"

	"github.com/jon4hz/foxtip/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEmailBody(t *testing.T) {
	n, err := New(&config.EmailConfig{})
	require.NoError(t, err)

	body, err := n.generateEmailBody(TipNotification{
		UserEmail:     "alice@example.com",
		UserName:      "Alice",
		Date:          "2026-10-18",
		League:        "Premier League",
		Match:         "Arsenal vs Chelsea",
		MatchTime:     "2026-10-18 16:00",
		MemberMessage: "Ma óvatosan!",
		DashboardURL:  "https://tips.example.com/dashboard",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Szia Alice!")
	assert.Contains(t, body, "2026-10-18")
	assert.Contains(t, body, "Arsenal vs Chelsea")
	assert.Contains(t, body, "Ma óvatosan!")
	assert.Contains(t, body, `href="https://tips.example.com/dashboard"`)
}

func TestGenerateEmailBody_EscapesContent(t *testing.T) {
	n, err := New(nil)
	require.NoError(t, err)

	body, err := n.generateEmailBody(TipNotification{
		UserEmail: "bob@example.com",
		Match:     "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Szia bob@example.com!")
	assert.NotContains(t, body, "<script>")
}

func TestSendTipPublished_Disabled(t *testing.T) {
	n, err := New(&config.EmailConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.SendTipPublished(TipNotification{UserEmail: "alice@example.com"}))
}

func TestSendTipPublished_EmptyRecipient(t *testing.T) {
	n, err := New(&config.EmailConfig{Enabled: true, SMTPHost: "127.0.0.1", SMTPPort: 1})
	require.NoError(t, err)
	assert.NoError(t, n.SendTipPublished(TipNotification{}))
}
