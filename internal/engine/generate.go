package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/metrics"
	"github.com/jon4hz/foxtip/internal/notify/ntfy"
	"github.com/jon4hz/foxtip/pkg/footballdata"
	"github.com/jon4hz/foxtip/pkg/openai"
	"github.com/samber/lo"
)

const kickoffLayout = "2006-01-02 15:04"

const defaultMaxCandidates = 45

// GenerationResult describes a finished generation run.
type GenerationResult struct {
	RunID      string
	Date       string
	Tip        *database.Tip
	Candidates int
	Err        error
}

// GenerateDailyTip runs the tip workflow for today. It never fails: errors end up in the
// chat log and the returned result.
func (e *Engine) GenerateDailyTip(ctx context.Context) *GenerationResult {
	date := e.Today()
	res := &GenerationResult{RunID: uuid.NewString(), Date: date}

	unlock := e.dateLocks.lock(date)
	defer unlock()

	logger := log.With("run", res.RunID, "date", date)
	logger.Info("Starting tip generation")
	start := time.Now()

	tip, candidates, err := e.generateTip(ctx, date)
	res.Candidates = candidates
	metrics.RecordTipGeneration(err == nil, time.Since(start))

	if err != nil {
		res.Err = err
		logger.Error("Tip generation failed", "error", err)
		e.logChat(ctx, SenderSystem, "[ERROR] "+err.Error())
		if nerr := e.ntfy.SendGenerationFailed(context.WithoutCancel(ctx), date, err); nerr != nil {
			logger.Warn("failed to send ntfy alert", "error", nerr)
		}
		return res
	}

	res.Tip = tip
	logger.Info("Tip generated", "tip", tip.ID, "match", tip.Match, "candidates", candidates, "scanned", tip.ScannedMatches)
	e.logChat(ctx, SenderSystem, fmt.Sprintf("Daily tip ready: %s (%s) @ %s, %d matches scanned.",
		tip.Match, tip.MatchTime, tip.Odds, tip.ScannedMatches))

	if nerr := e.ntfy.SendTipGenerated(context.WithoutCancel(ctx), ntfy.TipSummary{
		Date:           tip.Date,
		Match:          tip.Match,
		MatchTime:      tip.MatchTime,
		Prediction:     tip.Prediction,
		Odds:           tip.Odds,
		ScannedMatches: tip.ScannedMatches,
		AdminURL:       e.cfg.ServerURL + "/admin",
	}); nerr != nil {
		logger.Warn("failed to send ntfy notification", "error", nerr)
	}
	return res
}

func (e *Engine) generateTip(ctx context.Context, date string) (*database.Tip, int, error) {
	list, err := e.getFixtures(ctx, date)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch matches: %w", err)
	}

	candidates := SelectCandidates(list.Matches, e.maxCandidates())
	prompt := FormatCandidates(candidates, e.loc)

	raw, err := e.completer.Complete(ctx, openai.CompletionRequest{
		Messages: []openai.Message{
			{Role: openai.RoleSystem, Content: e.cfg.Assistant.TipPersona},
			{Role: openai.RoleUser, Content: tipInstruction(date, prompt)},
		},
		JSON: true,
	})
	if err != nil {
		return nil, len(candidates), fmt.Errorf("completion failed: %w", err)
	}

	out, err := ParseTipOutput(raw)
	if err != nil {
		return nil, len(candidates), err
	}

	tip, err := e.db.UpsertTipByDate(ctx, &database.Tip{
		Date:           date,
		League:         out.League,
		Match:          out.Match,
		Prediction:     out.Prediction,
		Odds:           out.Odds,
		Reasoning:      out.Reasoning,
		MemberMessage:  out.MemberMessage,
		MatchTime:      out.MatchTime,
		ScannedMatches: len(list.Matches),
	})
	if err != nil {
		return nil, len(candidates), fmt.Errorf("failed to store tip: %w", err)
	}
	return tip, len(candidates), nil
}

func (e *Engine) getFixtures(ctx context.Context, date string) (*footballdata.MatchList, error) {
	if list, ok := e.cache.GetFixtures(ctx, date); ok {
		log.Debug("using cached fixtures", "date", date, "matches", len(list.Matches))
		return list, nil
	}
	list, err := e.fixtures.GetMatches(ctx, date, date)
	if err != nil {
		return nil, err
	}
	e.cache.SetFixtures(ctx, date, list)
	return list, nil
}

func (e *Engine) maxCandidates() int {
	if e.cfg.FootballData == nil || e.cfg.FootballData.MaxCandidates <= 0 {
		return defaultMaxCandidates
	}
	return e.cfg.FootballData.MaxCandidates
}

// SelectCandidates keeps the timed matches in provider order, at most limit of them.
func SelectCandidates(matches []footballdata.Match, limit int) []footballdata.Match {
	timed := lo.Filter(matches, func(m footballdata.Match, _ int) bool {
		return m.Status == footballdata.StatusTimed
	})
	if len(timed) > limit {
		timed = timed[:limit]
	}
	return timed
}

// FormatCandidates renders one line per match, kickoff in loc.
func FormatCandidates(matches []footballdata.Match, loc *time.Location) string {
	lines := lo.Map(matches, func(m footballdata.Match, _ int) string {
		return fmt.Sprintf("#%d | %s | %s vs %s | %s",
			m.ID, m.Competition.Name, m.HomeTeam.Name, m.AwayTeam.Name, m.UTCDate.In(loc).Format(kickoffLayout))
	})
	return strings.Join(lines, "\n")
}

func tipInstruction(date, matches string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", date)
	b.WriteString("Pick the single best bet of the day from the following matches.\n")
	b.WriteString("Copy matchTime verbatim from the list, do not invent it.\n\n")
	b.WriteString("Matches:\n")
	b.WriteString(matches)
	return b.String()
}
