package pages

import (
	"context"

	"github.com/a-h/templ"
	"github.com/jon4hz/foxtip/internal/api/models"
	"github.com/jon4hz/foxtip/web/templates/components"
)

// Login renders the login form.
func Login() templ.Component {
	return layout("Belépés", nil, component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="card narrow"><h1>Belépés</h1>`)
		w.raw(`<form method="post" action="/auth/login">`)
		w.raw(`<label>Email<input type="email" name="email" required autofocus></label>`)
		w.raw(`<label>Jelszó<input type="password" name="password" required></label>`)
		w.raw(`<button type="submit">Belépés</button></form>`)
		w.raw(`<p class="muted">Még nincs fiókod? <a href="/register">Regisztráció</a></p></section>`)
	}))
}

// Register renders the registration form.
func Register() templ.Component {
	return layout("Regisztráció", nil, component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="card narrow"><h1>Regisztráció</h1>`)
		w.raw(`<form method="post" action="/auth/register">`)
		w.raw(`<label>Teljes név<input type="text" name="fullname"></label>`)
		w.raw(`<label>Email<input type="email" name="email" required></label>`)
		w.raw(`<label>Jelszó<input type="password" name="password" required minlength="6"></label>`)
		w.raw(`<label>Kezdő bankroll<input type="number" name="startingCapital" min="0" step="0.01" value="0"></label>`)
		w.raw(`<button type="submit">Regisztráció</button></form>`)
		w.raw(`<p class="muted">Van már fiókod? <a href="/login">Belépés</a></p></section>`)
	}))
}

// Payment renders the license purchase instructions.
func Payment(user models.User, contactEmail string) templ.Component {
	return layout("Licenc", &user, component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="card narrow"><h1>Licenc szükséges</h1>`)
		w.rawf(`<p>Szia %s! A napi tippek megtekintéséhez aktív licenc kell.</p>`, user.DisplayName())
		w.rawf(`<p>Kezdő bankrollod: <strong>%s</strong></p>`, components.FormatMoney(user.StartingBankroll))
		if contactEmail != "" {
			w.rawf(`<p>A licenc aktiválásához írj nekünk: <a href="mailto:%s">%s</a></p>`, contactEmail, contactEmail)
		} else {
			w.raw(`<p>A licenc aktiválásához vedd fel a kapcsolatot az üzemeltetővel.</p>`)
		}
		w.raw(`<p class="muted">Az aktiválás után a tippek azonnal elérhetők a dashboardon.</p></section>`)
	}))
}
