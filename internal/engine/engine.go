package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/foxtip/internal/cache"
	"github.com/jon4hz/foxtip/internal/config"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/notify/email"
	"github.com/jon4hz/foxtip/internal/notify/ntfy"
	"github.com/jon4hz/foxtip/internal/scheduler"
	"github.com/jon4hz/foxtip/pkg/footballdata"
	"github.com/jon4hz/foxtip/pkg/openai"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for unknown users, wrong passwords and empty input.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrPasswordTooLong is returned when a password does not fit into a bcrypt hash.
	ErrPasswordTooLong = errors.New("password is longer than 72 bytes")
	// ErrTipNotFound is returned when a tip ID does not exist.
	ErrTipNotFound = errors.New("tip not found")
	// ErrUserNotFound is returned when a user ID or email does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmptyMessage is returned when the admin sends an empty chat message.
	ErrEmptyMessage = errors.New("message is empty")
)

// Chat senders written by the engine.
const (
	SenderSystem = "System"
	SenderAdmin  = "Admin"
)

// FixtureSource returns the matches of a date range.
type FixtureSource interface {
	GetMatches(ctx context.Context, dateFrom, dateTo string) (*footballdata.MatchList, error)
}

// Completer runs a chat completion.
type Completer interface {
	Complete(ctx context.Context, req openai.CompletionRequest) (string, error)
}

// Engine owns the tip workflow, the admin chat and the account rules.
type Engine struct {
	cfg       *config.Config
	db        database.DB
	fixtures  FixtureSource
	completer Completer
	cache     *cache.EngineCache
	scheduler *scheduler.Scheduler
	email     *email.NotificationService
	ntfy      *ntfy.Client
	clock     clockwork.Clock
	loc       *time.Location

	dateLocks *dateLocks

	// background work such as notification fan-out
	wg sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithFixtureSource replaces the football-data.org client.
func WithFixtureSource(f FixtureSource) Option {
	return func(e *Engine) { e.fixtures = f }
}

// WithCompleter replaces the OpenAI client.
func WithCompleter(c Completer) Option {
	return func(e *Engine) { e.completer = c }
}

// WithClock replaces the wall clock.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// New creates a new Engine instance.
func New(cfg *config.Config, db database.DB, opts ...Option) (*Engine, error) {
	loc := cfg.Location()

	sched, err := scheduler.New(loc)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	cacheCfg := cfg.Cache
	if cacheCfg == nil {
		cacheCfg = &config.CacheConfig{Type: config.CacheTypeMemory}
	}
	engineCache, err := cache.NewEngineCache(cacheCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine cache: %w", err)
	}

	emailService, err := email.New(cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to create email service: %w", err)
	}

	e := &Engine{
		cfg:       cfg,
		db:        db,
		cache:     engineCache,
		scheduler: sched,
		email:     emailService,
		ntfy:      ntfy.New(cfg.Ntfy),
		clock:     clockwork.NewRealClock(),
		loc:       loc,
		dateLocks: newDateLocks(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.fixtures == nil {
		if cfg.FootballData == nil {
			return nil, fmt.Errorf("missing football_data config")
		}
		e.fixtures = footballdata.New(cfg.FootballData)
	}
	if e.completer == nil {
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("missing openai config")
		}
		e.completer = openai.New(cfg.OpenAI)
	}

	if err := e.setupJobs(); err != nil {
		return nil, fmt.Errorf("failed to setup jobs: %w", err)
	}

	return e, nil
}

// GetConfig returns the engine configuration.
func (e *Engine) GetConfig() *config.Config {
	return e.cfg
}

// GetCacheStats returns the hit and miss counters of the engine caches.
func (e *Engine) GetCacheStats() []*cache.Stats {
	return e.cache.GetStats()
}

// GetDB returns the store used by the engine.
func (e *Engine) GetDB() database.DB {
	return e.db
}

// Now returns the current time in the configured timezone.
func (e *Engine) Now() time.Time {
	return e.clock.Now().In(e.loc)
}

// Today returns the current date key (YYYY-MM-DD) in the configured timezone.
func (e *Engine) Today() string {
	return dateKey(e.clock.Now(), e.loc)
}

func dateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// logChat appends a message to the chat log. Failures are logged only.
// The entry is written even when ctx was cancelled by the caller.
func (e *Engine) logChat(ctx context.Context, sender, text string) {
	msg := &database.ChatMessage{
		Sender:    sender,
		Text:      text,
		Timestamp: e.clock.Now(),
	}
	if err := e.db.CreateChatMessage(context.WithoutCancel(ctx), msg); err != nil {
		log.Error("failed to write chat message", "sender", sender, "error", err)
	}
}

// dateLocks hands out one mutex per date key. Entries are dropped once nobody holds or
// waits for them.
type dateLocks struct {
	mu    sync.Mutex
	locks map[string]*dateLock
}

type dateLock struct {
	sync.Mutex
	refs int
}

func newDateLocks() *dateLocks {
	return &dateLocks{locks: make(map[string]*dateLock)}
}

func (d *dateLocks) lock(date string) func() {
	d.mu.Lock()
	l, ok := d.locks[date]
	if !ok {
		l = &dateLock{}
		d.locks[date] = l
	}
	l.refs++
	d.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		d.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(d.locks, date)
		}
		d.mu.Unlock()
	}
}

func (d *dateLocks) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.locks)
}
