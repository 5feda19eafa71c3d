package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/foxtip/internal/api/auth"
	"github.com/jon4hz/foxtip/internal/api/handler"
	"github.com/jon4hz/foxtip/internal/api/ratelimit"
	"github.com/jon4hz/foxtip/internal/config"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/engine"
	"github.com/jon4hz/foxtip/internal/gravatar"
	"github.com/jon4hz/foxtip/internal/metrics"
	"github.com/jon4hz/foxtip/internal/policy"
	"github.com/jon4hz/foxtip/internal/static"
)

const sessionName = "foxtip_session"

const shutdownTimeout = 10 * time.Second

type Server struct {
	ctx       context.Context
	cfg       *config.Config
	ginEngine *gin.Engine
	engine    *engine.Engine
	gate      *auth.Gate
	avatars   *gravatar.Resolver
	limiter   *ratelimit.RateLimiter
}

// New creates the HTTP server. The routes are registered immediately.
func New(ctx context.Context, cfg *config.Config, db database.DB, e *engine.Engine, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if e == nil {
		return nil, fmt.Errorf("engine is required")
	}

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	var ownerEmail string
	var loginRate int
	if cfg.Auth != nil {
		ownerEmail = cfg.Auth.OwnerEmail
		loginRate = cfg.Auth.LoginRatePerMinute
	}

	s := &Server{
		ctx:       ctx,
		cfg:       cfg,
		ginEngine: gin.New(),
		engine:    e,
		gate:      auth.NewGate(db, policy.Default(ownerEmail)),
		avatars:   gravatar.New(cfg.Gravatar),
		limiter:   ratelimit.NewPerMinute(loginRate),
	}
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

func (s *Server) setupSession() {
	maxAge := s.cfg.SessionMaxAge
	if maxAge <= 0 {
		maxAge = 86400
	}
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   false, // TLS is terminated by a reverse proxy
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions(sessionName, store))
}

func (s *Server) setupRoutes() {
	s.ginEngine.Use(gin.Recovery())
	s.ginEngine.Use(metrics.Middleware())
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))
	s.setupSession()

	if s.cfg.Metrics != nil && s.cfg.Metrics.Enabled {
		s.ginEngine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	s.ginEngine.StaticFS("/static", static.FS())

	h := handler.New(s.engine, s.gate, s.avatars)

	s.ginEngine.GET("/", h.Home)
	s.ginEngine.GET("/login", h.LoginPage)
	s.ginEngine.GET("/register", h.RegisterPage)
	s.ginEngine.GET("/logout", h.Logout)

	authGroup := s.ginEngine.Group("/auth")
	authGroup.Use(s.limiter.Middleware())
	authGroup.POST("/login", h.Login)
	authGroup.POST("/register", h.Register)

	protected := s.ginEngine.Group("/")
	protected.Use(s.gate.RequireAuth())
	protected.GET("/dashboard", h.Dashboard)
	protected.GET("/payment", h.Payment)

	admin := s.ginEngine.Group("/admin")
	admin.Use(s.gate.RequireAuth(), s.gate.RequireAdmin())
	admin.GET("", h.AdminPanel)
	admin.POST("/run-robot", h.RunRobot)
	admin.POST("/toggle-license", h.ToggleLicense)
	admin.POST("/chat", h.Chat)
	admin.POST("/publish-tip", h.PublishTip)
	admin.POST("/run-job", h.RunJob)
}

// Run serves until the server context is cancelled.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-s.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("failed to shut down API server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
