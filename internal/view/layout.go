// Package view renders the portal pages with gomponents.
package view

import (
	"net/http"
	"strings"
	"unicode"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Page carries per-request values shared by every page.
type Page struct {
	CSRFToken string
	Error     string
	Notice    string
}

func Render(w http.ResponseWriter, status int, node Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func document(title string, head Node, body ...Node) Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				TitleEl(Text(title+" | Enterprise Portal")),
				Link(Rel("icon"), Href("data:,")),
				StyleEl(Raw(stylesheet)),
				Script(Src("https://unpkg.com/lucide@latest/dist/umd/lucide.min.js")),
				head,
			),
			Body(
				Group(body),
				Script(Raw("if (window.lucide) { window.lucide.createIcons(); }")),
			),
		),
	)
}

func csrfField(p Page) Node {
	return Input(Type("hidden"), Name("csrf_token"), Value(p.CSRFToken))
}

func flash(p Page) Node {
	return Group{
		If(p.Error != "", P(Class("flash flash-error"), Role("alert"), Text(p.Error))),
		If(p.Notice != "", P(Class("flash flash-notice"), Text(p.Notice))),
	}
}

// icon renders a lucide icon by its component name, e.g. BarChart3.
func icon(name string) Node {
	return I(Class("icon"), Data("lucide", lucideName(name)), Aria("hidden", "true"))
}

func lucideName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && (unicode.IsUpper(r) || unicode.IsDigit(r)) {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

const stylesheet = `
*{box-sizing:border-box}
body{margin:0;font-family:Inter,system-ui,sans-serif;background:#0f172a;color:#e2e8f0}
a{color:inherit}
.icon{width:18px;height:18px}
.btn{border:1px solid #334155;background:#1e293b;color:#e2e8f0;padding:6px 12px;border-radius:6px;cursor:pointer}
.btn-primary{background:#2563eb;border-color:#2563eb}
.btn-danger{background:#dc2626;border-color:#dc2626}
.flash{padding:8px 12px;border-radius:6px}
.flash-error{background:#7f1d1d}
.flash-notice{background:#14532d}
.login-wrap{max-width:380px;margin:10vh auto;padding:32px;background:#1e293b;border-radius:12px}
.login-form label{display:block;margin-top:12px}
.login-form input{width:100%;padding:8px;margin-top:4px}
.app-shell{display:flex;min-height:100vh}
.sidebar{width:260px;background:#111827;padding:16px}
.nav-link{display:flex;gap:8px;align-items:center;padding:8px;border-radius:6px;text-decoration:none}
.nav-link.active{background:#1e40af}
.nav-label{text-transform:uppercase;font-size:12px;color:#94a3b8;margin-top:16px}
.main{flex:1;display:flex;flex-direction:column}
.topbar{display:flex;justify-content:space-between;align-items:center;padding:12px 24px;border-bottom:1px solid #1e293b}
.content{flex:1;padding:24px}
.iframe-wrapper,.embed-frame,.powerbi-container{width:100%;height:75vh;border:0}
.badge{font-size:12px;padding:2px 8px;border-radius:999px;background:#334155}
.item-card{display:flex;justify-content:space-between;align-items:center;padding:12px;margin:8px 0;background:#1e293b;border-radius:8px}
.item-actions{display:flex;gap:6px}
.item-form label{display:block;margin-top:10px}
.item-form input,.item-form select{width:100%;padding:6px}
.icon-picker{display:flex;flex-wrap:wrap;gap:8px}
`

func ErrorPage(title, message string) Node {
	return document(title, nil,
		Main(Class("login-wrap"),
			H1(Text(title)),
			P(Text(message)),
			A(Href("/"), Class("btn"), Text("Back to portal")),
		),
	)
}
