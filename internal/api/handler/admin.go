package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/foxtip/internal/api/auth"
	"github.com/jon4hz/foxtip/internal/api/models"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/engine"
	"github.com/jon4hz/foxtip/internal/scheduler"
	"github.com/jon4hz/foxtip/web/templates/pages"
	"golang.org/x/sync/errgroup"
)

const (
	adminTipsLimit = 30
	adminChatLimit = 50
)

// AdminPanel renders the operator panel.
func (h *Handler) AdminPanel(c *gin.Context) {
	user := auth.GetUser(c)

	var (
		users []database.User
		tips  []database.Tip
		chat  []database.ChatMessage
		stats *database.Stats
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		users, err = h.engine.GetDB().GetAllUsers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		tips, err = h.engine.GetDB().GetTips(ctx, adminTipsLimit)
		return err
	})
	g.Go(func() error {
		var err error
		chat, err = h.engine.GetChatLog(ctx, adminChatLimit)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = h.engine.GetDB().GetStats(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to load admin data", "error", err)
		c.String(http.StatusInternalServerError, "Failed to load admin data")
		return
	}

	render(c, http.StatusOK, pages.Admin(models.AdminData{
		User:          models.ToUser(user, h.gate, h.avatars),
		Today:         h.engine.Today(),
		Users:         models.ToUsers(users, h.gate, h.avatars),
		Tips:          models.ToTips(tips),
		Chat:          models.ToChatMessages(chat, engine.SenderAdmin),
		Jobs:          h.engine.GetScheduler().GetJobs(),
		Stats:         stats,
		Caches:        h.engine.GetCacheStats(),
		AssistantName: h.engine.AssistantName(),
	}))
}

// RunRobot runs the tip generation synchronously. Failures end up in the chat log.
func (h *Handler) RunRobot(c *gin.Context) {
	res := h.engine.GenerateDailyTip(c.Request.Context())
	if res.Err != nil {
		log.Warn("manual tip generation failed", "run", res.RunID, "error", res.Err)
	}
	c.Redirect(http.StatusFound, "/admin")
}

// RunJob triggers a scheduled job from the jobs table.
func (h *Handler) RunJob(c *gin.Context) {
	jobID := c.PostForm("jobId")
	if err := h.engine.RunJob(jobID); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			c.String(http.StatusNotFound, "Job not found")
			return
		}
		log.Error("failed to trigger job", "job", jobID, "error", err)
		c.String(http.StatusInternalServerError, "Failed to trigger job")
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

func (h *Handler) ToggleLicense(c *gin.Context) {
	userID, err := parseUintParam(c.PostForm("userId"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid user ID")
		return
	}

	if _, err := h.engine.ToggleLicense(c.Request.Context(), userID); err != nil {
		if errors.Is(err, engine.ErrUserNotFound) {
			c.String(http.StatusNotFound, "User not found")
			return
		}
		log.Error("failed to toggle license", "user", userID, "error", err)
		c.String(http.StatusInternalServerError, "Failed to toggle license")
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

func (h *Handler) PublishTip(c *gin.Context) {
	tipID, err := parseUintParam(c.PostForm("tipId"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid tip ID")
		return
	}

	if _, err := h.engine.PublishTip(c.Request.Context(), tipID); err != nil {
		if errors.Is(err, engine.ErrTipNotFound) {
			c.String(http.StatusNotFound, "Tip not found")
			return
		}
		log.Error("failed to publish tip", "tip", tipID, "error", err)
		c.String(http.StatusInternalServerError, "Failed to publish tip")
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

type chatRequest struct {
	Message string `form:"message" json:"message"`
}

// Chat forwards one admin message to the assistant. It accepts form and JSON bodies.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request",
		})
		return
	}

	reply, err := h.engine.SendChatMessage(c.Request.Context(), req.Message)
	if err != nil {
		if errors.Is(err, engine.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Message is required",
			})
			return
		}
		log.Error("chat completion failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "The assistant is not available right now",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reply":   reply,
	})
}
