package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/foxtip/internal/api/auth"
	"github.com/jon4hz/foxtip/internal/engine"
)

// Login checks the submitted credentials and starts a session.
func (h *Handler) Login(c *gin.Context) {
	user, err := h.engine.Authenticate(c.Request.Context(), c.PostForm("email"), c.PostForm("password"))
	if err != nil {
		if !errors.Is(err, engine.ErrInvalidCredentials) {
			log.Error("failed to authenticate", "error", err)
		}
		c.String(http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := auth.StartSession(c, user); err != nil {
		log.Error("failed to save session", "error", err)
		c.String(http.StatusInternalServerError, "Login failed")
		return
	}

	log.Info("User logged in", "user", user.ID)
	c.Redirect(http.StatusFound, h.landingPath(user))
}

// Register creates an account and logs it in.
func (h *Handler) Register(c *gin.Context) {
	user, err := h.engine.Register(c.Request.Context(), engine.RegisterInput{
		FullName:        c.PostForm("fullname"),
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		StartingCapital: c.PostForm("startingCapital"),
	})
	switch {
	case errors.Is(err, engine.ErrEmailTaken):
		c.String(http.StatusConflict, "Email already registered")
		return
	case errors.Is(err, engine.ErrInvalidCredentials):
		c.String(http.StatusBadRequest, "Email and password are required")
		return
	case errors.Is(err, engine.ErrPasswordTooLong):
		c.String(http.StatusBadRequest, "Password must be at most 72 bytes")
		return
	case err != nil:
		log.Error("failed to register user", "error", err)
		c.String(http.StatusInternalServerError, "Registration failed")
		return
	}

	if err := auth.StartSession(c, user); err != nil {
		log.Error("failed to save session", "error", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.Redirect(http.StatusFound, h.landingPath(user))
}
