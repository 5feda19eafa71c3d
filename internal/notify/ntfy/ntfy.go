package ntfy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/foxtip/internal/config"
)

// Client publishes operator alerts to a ntfy topic.
type Client struct {
	serverURL  string
	topic      string
	token      string
	enabled    bool
	httpClient *http.Client
}

// Message represents a ntfy message.
type Message struct {
	Topic    string   `json:"topic"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Priority int      `json:"priority,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Click    string   `json:"click,omitempty"`
}

// New creates a new ntfy client. A nil or disabled config yields a client that drops messages.
func New(cfg *config.NtfyConfig) *Client {
	c := &Client{httpClient: &http.Client{Timeout: 30 * time.Second}}
	if cfg == nil || !cfg.Enabled {
		return c
	}
	c.enabled = true
	c.serverURL = cfg.ServerURL
	c.topic = cfg.Topic
	c.token = cfg.Token
	return c
}

// SendMessage sends a message to ntfy.
func (c *Client) SendMessage(ctx context.Context, msg Message) error {
	if !c.enabled {
		return nil
	}
	msg.Topic = c.topic

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Markdown", "yes")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("ntfy server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	log.Debug("Sent ntfy notification", "topic", msg.Topic, "title", msg.Title)
	return nil
}

// TipSummary describes a freshly generated tip.
type TipSummary struct {
	Date           string
	Match          string
	MatchTime      string
	Prediction     string
	Odds           string
	ScannedMatches int
	AdminURL       string
}

// SendTipGenerated tells the operator that a tip is waiting for publication.
func (c *Client) SendTipGenerated(ctx context.Context, tip TipSummary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "**Match:** %s\n", tip.Match)
	fmt.Fprintf(&b, "**Kickoff:** %s\n", tip.MatchTime)
	fmt.Fprintf(&b, "**Prediction:** %s @ %s\n", tip.Prediction, tip.Odds)
	fmt.Fprintf(&b, "**Scanned:** %d matches\n\n", tip.ScannedMatches)
	b.WriteString("The tip is pending. Publish it in the admin panel.")

	return c.SendMessage(ctx, Message{
		Title:    fmt.Sprintf("🦊 Tip ready for %s", tip.Date),
		Message:  b.String(),
		Priority: 3,
		Tags:     []string{"foxtip", "tip-generated"},
		Click:    tip.AdminURL,
	})
}

// SendGenerationFailed alerts the operator about a failed generation run.
func (c *Client) SendGenerationFailed(ctx context.Context, date string, cause error) error {
	return c.SendMessage(ctx, Message{
		Title:    fmt.Sprintf("⚠️ Tip generation failed for %s", date),
		Message:  cause.Error(),
		Priority: 5,
		Tags:     []string{"warning", "foxtip", "tip-failed"},
	})
}
