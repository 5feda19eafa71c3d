package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jon4hz/foxtip/internal/config"
	dbmock "github.com/jon4hz/foxtip/internal/database/mock"
	"github.com/jon4hz/foxtip/pkg/footballdata"
	"github.com/jon4hz/foxtip/pkg/openai"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// 10:00 UTC is noon in Budapest.
var testNow = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

const testDate = "2026-10-18"

const validOutput = `{"league":"Premier League","match":"Arsenal vs Chelsea","prediction":"Home win","odds":"1.85","reasoning":"Arsenal strong at home","memberMessage":"Ma óvatosan!","matchTime":"2026-10-18 16:00"}`

type fakeFixtures struct {
	mu    sync.Mutex
	list  *footballdata.MatchList
	err   error
	calls int
	// onCall runs before the response is returned
	onCall func(ctx context.Context) error
}

func (f *fakeFixtures) GetMatches(ctx context.Context, dateFrom, dateTo string) (*footballdata.MatchList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.onCall != nil {
		if err := f.onCall(ctx); err != nil {
			return nil, err
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.list == nil {
		return &footballdata.MatchList{}, nil
	}
	return f.list, nil
}

func (f *fakeFixtures) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []openai.CompletionRequest
	delay    time.Duration

	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func (f *fakeCompleter) Complete(ctx context.Context, req openai.CompletionRequest) (string, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		cur := f.maxInflight.Load()
		if n <= cur || f.maxInflight.CompareAndSwap(cur, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeCompleter) LastRequest() openai.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return openai.CompletionRequest{}
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeCompleter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestConfig() *config.Config {
	return &config.Config{
		ServerURL:       "http://localhost:3000",
		Timezone:        "Europe/Budapest",
		SessionKey:      "test",
		LicenseDuration: 30 * 24 * time.Hour,
		Quotes:          []string{"first", "second", "third"},
		Database:        &config.DatabaseConfig{Driver: config.DatabaseDriverSQLite, Path: ":memory:"},
		Cache:           &config.CacheConfig{Type: config.CacheTypeMemory},
		FootballData:    &config.FootballDataConfig{URL: "http://football.invalid", APIKey: "fd", MaxCandidates: 45},
		OpenAI:          &config.OpenAIConfig{URL: "http://openai.invalid", APIKey: "oa", Model: "test"},
		Assistant: &config.AssistantConfig{
			Name:        "Róka",
			TipPersona:  "tip persona",
			ChatPersona: "chat persona",
			ChatHistory: 10,
		},
		Auth: &config.AuthConfig{OwnerEmail: "owner@example.com"},
	}
}

type testEngine struct {
	*Engine
	db        *dbmock.MockDB
	fixtures  *fakeFixtures
	completer *fakeCompleter
	clock     *clockwork.FakeClock
}

func createTestEngine(t *testing.T, cfg *config.Config) *testEngine {
	t.Helper()
	if cfg == nil {
		cfg = newTestConfig()
	}
	db := dbmock.NewMockDB()
	fixtures := &fakeFixtures{}
	completer := &fakeCompleter{reply: validOutput}
	clock := clockwork.NewFakeClockAt(testNow)

	e, err := New(cfg, db,
		WithFixtureSource(fixtures),
		WithCompleter(completer),
		WithClock(clock),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	return &testEngine{Engine: e, db: db, fixtures: fixtures, completer: completer, clock: clock}
}

// makeMatches returns total matches. Every third one is timed until timed of them exist.
func makeMatches(total, timed int) []footballdata.Match {
	matches := make([]footballdata.Match, 0, total)
	var n int
	for i := 1; i <= total; i++ {
		status := footballdata.StatusFinished
		switch {
		case i%3 == 0 && n < timed:
			status = footballdata.StatusTimed
			n++
		case i%7 == 0:
			status = footballdata.StatusScheduled
		case i%11 == 0:
			status = footballdata.StatusInPlay
		}
		matches = append(matches, footballdata.Match{
			ID:          i,
			UTCDate:     testNow.Add(time.Duration(i) * time.Minute),
			Status:      status,
			Competition: footballdata.Competition{Name: fmt.Sprintf("League %d", i%5)},
			HomeTeam:    footballdata.Team{Name: fmt.Sprintf("Home %d", i)},
			AwayTeam:    footballdata.Team{Name: fmt.Sprintf("Away %d", i)},
		})
	}
	return matches
}
