package view

import (
	"enterprise-portal/internal/auth"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// LoginPage renders the sign-in form. demo is listed under the form when
// the built-in credential table is active.
func LoginPage(p Page, email string, demo []auth.DemoCredential) Node {
	return document("Sign in", nil,
		Main(Class("login-wrap"),
			H1(Text("Enterprise Portal")),
			P(Text("Sign in to access your dashboards")),
			flash(p),
			Form(
				Class("login-form"),
				Method("post"),
				Action("/login"),
				csrfField(p),
				Label(For("email"), Text("Email Address")),
				Input(ID("email"), Type("email"), Name("email"), Value(email), Placeholder("you@company.com"), AutoComplete("username"), Required()),
				Label(For("password"), Text("Password")),
				Input(ID("password"), Type("password"), Name("password"), Placeholder("••••••••"), AutoComplete("current-password"), Required()),
				Button(Type("submit"), Class("btn btn-primary"), Text("Sign In")),
			),
			If(len(demo) > 0, Div(Class("demo-credentials"),
				P(Strong(Text("Demo Credentials"))),
				Map(demo, func(c auth.DemoCredential) Node {
					return P(Span(Text(c.Label+": ")), Code(Text(c.Email+" / "+c.Password)))
				}),
			)),
		),
	)
}
