package view

import (
	"enterprise-portal/internal/models"
	"enterprise-portal/internal/session"

	. "maragu.dev/gomponents"
	"maragu.dev/gomponents/components"
	. "maragu.dev/gomponents/html"
)

// Dashboard renders a logged-in screen: sidebar, top bar and the pane for
// the current state.
func Dashboard(p Page, screen session.Screen, renderer EmbedRenderer, admin AdminView) Node {
	if renderer == nil {
		renderer = NoopRenderer{}
	}
	title := "Home"
	var pane Node
	switch screen.State {
	case session.StateViewing:
		if screen.Item != nil {
			title = screen.Item.Name
			pane = contentViewer(*screen.Item, renderer)
		}
	case session.StateAdministering:
		title = "Menu Management"
		pane = adminPanel(p, screen.Menu, admin)
	}
	if pane == nil {
		pane = welcome(screen)
	}

	return document(title, renderer.Head(),
		Main(Class("app-shell"),
			sidebar(screen),
			Section(Class("main"),
				topbar(p, screen),
				Div(Class("content"), flash(p), pane),
			),
		),
	)
}

func sidebar(screen session.Screen) Node {
	selected := ""
	if screen.Item != nil {
		selected = screen.Item.ID
	}
	return Aside(Class("sidebar"),
		Div(Class("brand"), Strong(Text("Portal"))),
		Nav(
			P(Class("nav-label"), Text("Menu")),
			Map(screen.Menu, func(item models.MenuItem) Node {
				return A(
					Href("/items/"+item.ID),
					components.Classes{"nav-link": true, "active": item.ID == selected},
					icon(item.Icon),
					Span(Text(item.Name)),
				)
			}),
			If(screen.IsAdmin, Group{
				P(Class("nav-label"), Text("Admin")),
				A(
					Href("/admin"),
					components.Classes{"nav-link": true, "active": screen.State == session.StateAdministering},
					icon("Settings"),
					Span(Text("Manage Items")),
				),
			}),
		),
	)
}

func topbar(p Page, screen session.Screen) Node {
	var name, role string
	if screen.User != nil {
		name = screen.User.Name
		role = string(screen.User.Role)
	}
	return Div(Class("topbar"),
		A(Href("/"), Class("nav-link"), icon("Home"), Span(Text("Home"))),
		Div(
			Span(Text(name)),
			Span(Class("badge"), Text(role)),
			Form(Method("post"), Action("/logout"),
				csrfField(p),
				Button(Type("submit"), Class("btn"), Text("Sign out")),
			),
		),
	)
}

func welcome(screen session.Screen) Node {
	var name string
	if screen.User != nil {
		name = screen.User.Name
	}
	return Div(Class("welcome"),
		H1(Text("Welcome back, "), Span(Class("user-name"), Text(name))),
		P(Text("Select an item from the sidebar to get started")),
		If(screen.IsAdmin, A(Href("/admin"), Class("btn"), icon("Settings"), Span(Text("Manage Menu Items")))),
		Div(Class("info-cards"),
			Div(Class("info-card"), H3(Text("Copilot Studio")), P(Text("Chat with AI assistants embedded directly in the portal"))),
			Div(Class("info-card"), H3(Text("Power BI Reports")), P(Text("Access interactive dashboards and analytics"))),
		),
	)
}

func contentViewer(item models.MenuItem, renderer EmbedRenderer) Node {
	var badge string
	var body Node
	switch cfg := item.Config.(type) {
	case models.CopilotConfig:
		badge = "Copilot Studio"
		body = renderer.Copilot(item, cfg)
	case models.PowerBIConfig:
		badge = "Power BI"
		body = renderer.PowerBI(item)
	default:
		body = P(Class("flash flash-error"), Text("Unsupported item type"))
	}
	return Div(Class("viewer"), Data("item-id", item.ID),
		Div(Class("viewer-header"),
			icon(item.Icon),
			H1(Text(item.Name)),
			If(badge != "", Span(Class("badge"), Text(badge))),
			If(item.Type() == models.ItemTypePowerBI, A(Href("/items/"+item.ID), Class("btn"), Text("Refresh"))),
		),
		body,
	)
}
