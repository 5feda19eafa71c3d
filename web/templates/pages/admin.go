package pages

import (
	"context"

	"github.com/a-h/templ"
	"github.com/jon4hz/foxtip/internal/api/models"
	"github.com/jon4hz/foxtip/web/templates/components"
)

// Admin renders the operator panel.
func Admin(data models.AdminData) templ.Component {
	return layout("Admin", &data.User, component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="card"><h2>Napi robot</h2>`)
		w.rawf(`<p class="muted">Mai dátum: %s</p>`, data.Today)
		w.raw(`<form method="post" action="/admin/run-robot"><button type="submit">Tipp generálása most</button></form>`)
		if data.Stats != nil {
			w.rawf(`<p class="muted">%s felhasználó (%s licenccel) · %s tipp (%s publikált) · %s chat üzenet</p>`,
				components.FormatCount(data.Stats.Users), components.FormatCount(data.Stats.LicensedUsers),
				components.FormatCount(data.Stats.Tips), components.FormatCount(data.Stats.PublishedTips),
				components.FormatCount(data.Stats.ChatMessages))
		}
		for _, c := range data.Caches {
			if c == nil || c.Stats == nil {
				continue
			}
			w.rawf(`<p class="muted">Cache %s: %s találat, %s hiány</p>`,
				c.CacheName, components.FormatCount(int64(c.Hits)), components.FormatCount(int64(c.Miss)))
		}
		w.raw(`</section>`)

		adminTips(w, data.Tips)
		adminUsers(w, data.Users)
		adminChat(w, data)
		adminJobs(w, data)
	}))
}

func adminTips(w *writer, tips []models.Tip) {
	w.raw(`<section class="card"><h2>Tippek</h2>`)
	if len(tips) == 0 {
		w.raw(`<p class="muted">Még nincs tipp.</p></section>`)
		return
	}
	w.raw(`<table><thead><tr><th>#</th><th>Dátum</th><th>Mérkőzés</th><th>Tipp</th><th>Odds</th><th>Vizsgált</th><th>Státusz</th><th></th></tr></thead><tbody>`)
	for _, t := range tips {
		w.rawf(`<tr><td>%d</td><td>%s</td><td>%s<br><span class="muted">%s · %s</span></td><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td>`,
			t.ID, t.Date, t.Match, t.League, t.MatchTime, t.Prediction, t.Odds, t.ScannedMatches, string(t.Status))
		if t.IsPublished {
			w.raw(`<span class="badge ok">publikálva</span>`)
		} else {
			w.rawf(`<form method="post" action="/admin/publish-tip"><input type="hidden" name="tipId" value="%d"><button type="submit">Publikálás</button></form>`, t.ID)
		}
		w.raw(`</td></tr>`)
	}
	w.raw(`</tbody></table></section>`)
}

func adminUsers(w *writer, users []models.User) {
	w.raw(`<section class="card"><h2>Felhasználók</h2>`)
	if len(users) == 0 {
		w.raw(`<p class="muted">Még nincs felhasználó.</p></section>`)
		return
	}
	w.raw(`<table><thead><tr><th>Név</th><th>Email</th><th>Bankroll</th><th>Licenc</th><th>Lejárat</th><th></th></tr></thead><tbody>`)
	for _, u := range users {
		w.raw(`<tr><td>`)
		if u.GravatarURL != "" {
			w.rawf(`<img class="avatar" src="%s" alt="">`, u.GravatarURL)
		}
		w.text(u.DisplayName())
		if u.IsAdmin {
			w.raw(` <span class="badge">admin</span>`)
		}
		w.rawf(`</td><td>%s</td><td>%s</td>`, u.Email, components.FormatMoney(u.CurrentBankroll))
		if u.HasLicense {
			w.raw(`<td><span class="badge ok">aktív</span></td>`)
		} else {
			w.raw(`<td><span class="badge warn">nincs</span></td>`)
		}
		w.rawf(`<td>%s</td>`, components.FormatExpiry(u.LicenseExpiry))
		label := "Bekapcsolás"
		if u.HasLicense {
			label = "Kikapcsolás"
		}
		w.rawf(`<td><form method="post" action="/admin/toggle-license"><input type="hidden" name="userId" value="%d"><button type="submit">%s</button></form></td></tr>`, u.ID, label)
	}
	w.raw(`</tbody></table></section>`)
}

func adminChat(w *writer, data models.AdminData) {
	w.rawf(`<section class="card"><h2>Chat · %s</h2><div id="chat-log" class="chat" data-assistant="%s">`, data.AssistantName, data.AssistantName)
	for _, m := range data.Chat {
		class := "bot"
		if m.FromAdmin {
			class = "me"
		}
		w.rawf(`<div class="msg %s"><span class="sender">%s</span> <span class="muted" title="%s">%s</span><p>%s</p></div>`,
			class, m.Sender, m.Timestamp.Format("2006-01-02 15:04:05"), components.FormatRelativeTime(m.Timestamp), m.Text)
	}
	w.raw(`</div><form id="chat-form"><input type="text" name="message" autocomplete="off" required><button type="submit">Küldés</button></form>`)
	w.raw(`<script>
document.getElementById("chat-form").addEventListener("submit", async (ev) => {
  ev.preventDefault();
  const input = ev.target.elements.message;
  const log = document.getElementById("chat-log");
  const add = (cls, sender, text) => {
    const div = document.createElement("div");
    div.className = "msg " + cls;
    const s = document.createElement("span"); s.className = "sender"; s.textContent = sender;
    const p = document.createElement("p"); p.textContent = text;
    div.append(s, p); log.append(div); log.scrollTop = log.scrollHeight;
  };
  const text = input.value; input.value = "";
  add("me", "Admin", text);
  try {
    const res = await fetch("/admin/chat", {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify({message: text})});
    const data = await res.json();
    if (data.success) { add("bot", log.dataset.assistant || "", data.reply); } else { add("error", "", data.error); }
  } catch (e) { add("error", "", "Request failed"); }
});
</script>`)
	w.raw(`</section>`)
}

func adminJobs(w *writer, data models.AdminData) {
	w.raw(`<section class="card"><h2>Ütemezett feladatok</h2>`)
	if len(data.Jobs) == 0 {
		w.raw(`<p class="muted">Nincs ütemezett feladat.</p></section>`)
		return
	}
	w.raw(`<table><thead><tr><th>Feladat</th><th>Ütemezés</th><th>Státusz</th><th>Utolsó futás</th><th>Következő</th><th>Futások</th><th>Hibák</th><th></th></tr></thead><tbody>`)
	for _, j := range data.Jobs {
		w.rawf(`<tr><td>%s<br><span class="muted">%s</span></td><td><code>%s</code></td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td>`,
			j.Name, j.Description, j.Schedule, string(j.Status),
			components.FormatRelativeTime(j.LastRun), components.FormatRelativeTime(j.NextRun), j.RunCount, j.ErrorCount)
		w.rawf(`<td><form method="post" action="/admin/run-job"><input type="hidden" name="jobId" value="%s"><button type="submit">Futtatás</button></form></td></tr>`, j.ID)
	}
	w.raw(`</tbody></table></section>`)
}
