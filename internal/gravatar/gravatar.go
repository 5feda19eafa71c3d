package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"

	"github.com/jon4hz/foxtip/internal/config"
	"github.com/jon4hz/foxtip/internal/database"
)

const baseURL = "https://www.gravatar.com/avatar/"

// Resolver builds avatar URLs for member emails.
type Resolver struct {
	enabled bool
	query   string
}

// New creates a resolver. A nil or disabled config yields empty URLs.
func New(cfg *config.GravatarConfig) *Resolver {
	if cfg == nil || !cfg.Enabled {
		return &Resolver{}
	}

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Set("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Set("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Set("s", strconv.Itoa(cfg.Size))
	}
	return &Resolver{enabled: true, query: params.Encode()}
}

// URL returns the avatar of email, or "" when avatars are disabled.
func (r *Resolver) URL(email string) string {
	email = database.NormalizeEmail(email)
	if r == nil || !r.enabled || email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	u := baseURL + hex.EncodeToString(sum[:])
	if r.query != "" {
		u += "?" + r.query
	}
	return u
}
