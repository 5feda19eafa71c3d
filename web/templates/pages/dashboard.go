package pages

import (
	"context"

	"github.com/a-h/templ"
	"github.com/jon4hz/foxtip/internal/api/models"
	"github.com/jon4hz/foxtip/web/templates/components"
)

// Dashboard renders the member dashboard.
func Dashboard(data models.DashboardData) templ.Component {
	return layout("Dashboard", &data.User, component(func(ctx context.Context, w *writer) {
		if data.Quote != "" {
			w.rawf(`<blockquote class="quote">%s</blockquote>`, data.Quote)
		}

		w.raw(`<section class="grid">`)
		w.raw(`<div class="card stat"><h3>Bankroll</h3>`)
		w.rawf(`<p class="big">%s</p>`, components.FormatMoney(data.User.CurrentBankroll))
		w.rawf(`<p class="muted">Kezdő: %s</p></div>`, components.FormatMoney(data.User.StartingBankroll))
		w.raw(`<div class="card stat"><h3>Javasolt tét</h3>`)
		w.rawf(`<p class="big">%d</p><p class="muted">a bankroll 3%%-a</p></div>`, data.SuggestedStake)
		w.raw(`<div class="card stat"><h3>Licenc</h3>`)
		if data.User.HasLicense {
			w.rawf(`<p class="big ok">Aktív</p><p class="muted">Lejár: %s</p></div>`, components.FormatExpiry(data.User.LicenseExpiry))
		} else {
			w.raw(`<p class="big warn">Nincs</p><p class="muted"><a href="/payment">Licenc vásárlása</a></p></div>`)
		}
		w.raw(`</section>`)

		w.rawf(`<section class="card"><h2>Mai tipp · %s</h2>`, data.Today)
		if data.TodayTip != nil {
			tipCard(w, data.TodayTip)
		} else if !data.User.HasLicense {
			w.raw(`<p class="muted">A napi tipp licenccel érhető el.</p>`)
		} else {
			w.raw(`<p class="muted">A mai tipp még nem jelent meg. Nézz vissza később!</p>`)
		}
		w.raw(`</section>`)

		w.raw(`<section class="card"><h2>Folyamatban lévő tippek</h2>`)
		if len(data.PendingTips) == 0 {
			w.raw(`<p class="muted">Nincs folyamatban lévő tipp.</p>`)
		} else {
			w.raw(`<table><thead><tr><th>Dátum</th><th>Bajnokság</th><th>Mérkőzés</th><th>Kezdés</th></tr></thead><tbody>`)
			for _, t := range data.PendingTips {
				w.rawf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`, t.Date, t.League, t.Match, t.MatchTime)
			}
			w.raw(`</tbody></table>`)
		}
		w.raw(`</section>`)
	}))
}

func tipCard(w *writer, t *models.Tip) {
	w.raw(`<div class="tip">`)
	w.rawf(`<p class="league">%s</p>`, t.League)
	w.rawf(`<h3>%s</h3>`, t.Match)
	w.rawf(`<p class="muted">Kezdés: %s</p>`, t.MatchTime)
	w.rawf(`<p class="prediction">%s <span class="odds">@ %s</span></p>`, t.Prediction, t.Odds)
	if t.Reasoning != "" {
		w.rawf(`<p>%s</p>`, t.Reasoning)
	}
	if t.MemberMessage != "" {
		w.rawf(`<p class="message">%s</p>`, t.MemberMessage)
	}
	w.raw(`</div>`)
}
