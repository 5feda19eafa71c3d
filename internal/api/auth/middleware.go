package auth

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/policy"
)

// Context keys set by the middleware.
const (
	ContextUser    = "user"
	ContextIsAdmin = "is_admin"
)

const sessionUserID = "user_id"

// UserLoader loads the account behind a session.
type UserLoader interface {
	GetUserByID(ctx context.Context, id uint) (*database.User, error)
}

// Gate maps sessions to users and admin capability.
type Gate struct {
	users  UserLoader
	policy *policy.Engine
}

// NewGate creates a new session gate.
func NewGate(users UserLoader, p *policy.Engine) *Gate {
	return &Gate{users: users, policy: p}
}

// IsAdmin applies the authorization policy.
func (g *Gate) IsAdmin(user *database.User) bool {
	return g.policy.IsAdmin(user)
}

// CurrentUser resolves the session user. It returns false without a valid session.
func (g *Gate) CurrentUser(c *gin.Context) (*database.User, bool) {
	id, ok := SessionUserID(c)
	if !ok {
		return nil, false
	}
	user, err := g.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		log.Debug("session user not found", "user", id, "error", err)
		return nil, false
	}
	return user, true
}

// RequireAuth redirects to /login unless the session belongs to an existing user.
func (g *Gate) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := g.CurrentUser(c)
		if !ok {
			ClearSession(c)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextIsAdmin, g.policy.IsAdmin(user))
		c.Next()
	}
}

// RequireAdmin silently sends non-admins to the dashboard. It must run after RequireAuth.
func (g *Gate) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			if user := GetUser(c); user != nil {
				log.Debug("non-admin tried to access admin route", "user", user.ID, "path", c.Request.URL.Path)
			}
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUser returns the user stored by RequireAuth.
func GetUser(c *gin.Context) *database.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	user, _ := v.(*database.User)
	return user
}

// SessionUserID returns the user ID stored in the session.
func SessionUserID(c *gin.Context) (uint, bool) {
	session := sessions.Default(c)
	id, ok := session.Get(sessionUserID).(uint)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// StartSession associates the session with user.
func StartSession(c *gin.Context, user *database.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserID, user.ID)
	return session.Save()
}

// ClearSession destroys the session.
func ClearSession(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		log.Error("failed to clear session", "error", err)
	}
}
