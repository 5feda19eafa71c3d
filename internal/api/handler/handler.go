package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/foxtip/internal/api/auth"
	"github.com/jon4hz/foxtip/internal/api/models"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/engine"
	"github.com/jon4hz/foxtip/internal/gravatar"
	"github.com/jon4hz/foxtip/web/templates/pages"
)

// pendingTipsLimit caps the pending list on the dashboard.
const pendingTipsLimit = 20

type Handler struct {
	engine  *engine.Engine
	gate    *auth.Gate
	avatars *gravatar.Resolver
}

func New(eng *engine.Engine, gate *auth.Gate, avatars *gravatar.Resolver) *Handler {
	return &Handler{
		engine:  eng,
		gate:    gate,
		avatars: avatars,
	}
}

// Home sends the visitor to the dashboard or the login page.
func (h *Handler) Home(c *gin.Context) {
	if _, ok := auth.SessionUserID(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) LoginPage(c *gin.Context) {
	if user, ok := h.gate.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, h.landingPath(user))
		return
	}
	render(c, http.StatusOK, pages.Login())
}

func (h *Handler) RegisterPage(c *gin.Context) {
	if user, ok := h.gate.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, h.landingPath(user))
		return
	}
	render(c, http.StatusOK, pages.Register())
}

func (h *Handler) Logout(c *gin.Context) {
	auth.ClearSession(c)
	c.Redirect(http.StatusFound, "/login")
}

// Dashboard renders today's tip for licensed members and the list of open tips.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	user := auth.GetUser(c)
	today := h.engine.Today()

	data := models.DashboardData{
		User:           models.ToUser(user, h.gate, h.avatars),
		Today:          today,
		SuggestedStake: engine.SuggestedStake(user.CurrentBankroll),
		Quote:          h.engine.QuoteOfTheDay(),
	}

	tip, err := h.engine.GetDB().GetTipByDate(ctx, today)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		log.Error("failed to get today's tip", "date", today, "error", err)
	}
	if h.engine.IsTipVisible(user, tip, h.engine.Now()) {
		t := models.ToTip(*tip)
		data.TodayTip = &t
	}

	if user.HasLicense {
		pending, err := h.engine.GetDB().GetPublishedTipsByStatus(ctx, database.TipStatusPending, pendingTipsLimit)
		if err != nil {
			log.Error("failed to get pending tips", "error", err)
		} else {
			data.PendingTips = models.ToTips(pending)
		}
	}

	render(c, http.StatusOK, pages.Dashboard(data))
}

// Payment renders the license instructions. Licensed members go straight to the dashboard.
func (h *Handler) Payment(c *gin.Context) {
	user := auth.GetUser(c)
	if user.HasLicense {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	var contact string
	if cfg := h.engine.GetConfig(); cfg.Auth != nil {
		contact = cfg.Auth.OwnerEmail
	}
	render(c, http.StatusOK, pages.Payment(models.ToUser(user, h.gate, h.avatars), contact))
}

// landingPath is where a user goes after logging in.
func (h *Handler) landingPath(user *database.User) string {
	if h.gate.IsAdmin(user) || user.HasLicense {
		return "/dashboard"
	}
	return "/payment"
}

func render(c *gin.Context, status int, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		log.Error("failed to render page", "path", c.Request.URL.Path, "error", err)
	}
}

func parseUintParam(param string) (uint, error) {
	var id uint64
	var err error
	if id, err = strconv.ParseUint(param, 10, 0); err != nil {
		return 0, err
	}
	return uint(id), nil
}
