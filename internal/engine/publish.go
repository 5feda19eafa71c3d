package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/jon4hz/foxtip/internal/database"
	"github.com/jon4hz/foxtip/internal/metrics"
	"github.com/jon4hz/foxtip/internal/notify/email"
)

// stakeFraction is the share of the bankroll suggested per tip.
const stakeFraction = 0.03

// PublishTip makes a tip visible to licensed members. The status is not touched.
func (e *Engine) PublishTip(ctx context.Context, tipID uint) (*database.Tip, error) {
	tip, err := e.db.PublishTip(ctx, tipID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrTipNotFound
		}
		return nil, fmt.Errorf("failed to publish tip: %w", err)
	}

	metrics.RecordTipPublished()
	log.Info("Tip published", "tip", tip.ID, "date", tip.Date)
	e.logChat(ctx, SenderSystem, fmt.Sprintf("Tip #%d published for %s.", tip.ID, tip.Date))

	if e.email.Enabled() {
		e.wg.Add(1)
		go func(tip database.Tip) {
			defer e.wg.Done()
			e.notifyMembers(context.Background(), &tip)
		}(*tip)
	}
	return tip, nil
}

func (e *Engine) notifyMembers(ctx context.Context, tip *database.Tip) {
	users, err := e.db.GetLicensedUsers(ctx)
	if err != nil {
		log.Error("failed to load licensed users", "error", err)
		return
	}

	var sent int
	for _, u := range users {
		if err := e.email.SendTipPublished(email.TipNotification{
			UserEmail:     u.Email,
			UserName:      u.FullName,
			Date:          tip.Date,
			League:        tip.League,
			Match:         tip.Match,
			MatchTime:     tip.MatchTime,
			MemberMessage: tip.MemberMessage,
			DashboardURL:  e.cfg.ServerURL + "/dashboard",
		}); err != nil {
			log.Error("failed to send tip email", "user", u.Email, "error", err)
			continue
		}
		sent++
	}
	log.Info("Tip emails sent", "tip", tip.ID, "sent", sent, "licensed", len(users))
}

// IsTipVisible reports whether user may see tip at now.
func (e *Engine) IsTipVisible(user *database.User, tip *database.Tip, now time.Time) bool {
	return IsTipVisible(user, tip, dateKey(now, e.loc))
}

// IsTipVisible is true when the user holds a license, the tip is published and it is today's tip.
func IsTipVisible(user *database.User, tip *database.Tip, today string) bool {
	if user == nil || tip == nil {
		return false
	}
	return user.HasLicense && tip.IsPublished && tip.Date == today
}

// SuggestedStake returns the rounded stake for a bankroll.
func SuggestedStake(bankroll float64) int64 {
	stake := math.Round(bankroll * stakeFraction)
	v, err := safecast.Convert[int64](stake)
	if err != nil {
		log.Warn("suggested stake out of range", "bankroll", bankroll, "error", err)
		return 0
	}
	return v
}

// QuoteOfTheDay picks one of the configured quotes, stable for a calendar day.
func (e *Engine) QuoteOfTheDay() string {
	quotes := e.cfg.Quotes
	if len(quotes) == 0 {
		return ""
	}
	return quotes[e.Now().YearDay()%len(quotes)]
}

// Wait blocks until background notifications are done.
func (e *Engine) Wait() {
	e.wg.Wait()
}
