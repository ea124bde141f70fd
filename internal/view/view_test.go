package view

import (
	"strings"
	"testing"
	"time"

	"enterprise-portal/internal/auth"
	"enterprise-portal/internal/catalogue"
	"enterprise-portal/internal/models"
	"enterprise-portal/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
)

func render(t *testing.T, node g.Node) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, node.Render(&b))
	return b.String()
}

func screenFor(user models.User, state session.State) session.Screen {
	menu := catalogue.Defaults(time.Now())
	screen := session.Screen{State: state, User: &user, Menu: menu, IsAdmin: user.IsAdmin()}
	if state == session.StateViewing {
		screen.Item = &menu[0]
	}
	return screen
}

var (
	admin = models.User{Email: "admin@admin.com", Role: models.RoleAdmin, Name: "Administrator"}
	user  = models.User{Email: "user@user.com", Role: models.RoleUser, Name: "Standard User"}
)

func TestLoginPageShowsErrorAndDemoHint(t *testing.T) {
	out := render(t, LoginPage(Page{CSRFToken: "tok", Error: "Invalid email or password"}, "a@b.c", auth.DemoCredentials()))

	assert.Contains(t, out, "Invalid email or password")
	assert.Contains(t, out, `name="csrf_token" value="tok"`)
	assert.Contains(t, out, `value="a@b.c"`)
	assert.Contains(t, out, "Demo Credentials")
	assert.Contains(t, out, "admin@admin.com / Admin123")

	out = render(t, LoginPage(Page{}, "", nil))
	assert.NotContains(t, out, "Demo Credentials")
}

func TestSidebarShowsAdminEntryOnlyForAdmins(t *testing.T) {
	out := render(t, Dashboard(Page{}, screenFor(admin, session.StateIdle), NoopRenderer{}, AdminView{}))
	assert.Contains(t, out, "Manage Items")
	assert.Contains(t, out, "Welcome back, ")
	assert.Contains(t, out, `href="/items/demo-copilot"`)
	assert.Contains(t, out, `data-lucide="bar-chart-3"`)

	out = render(t, Dashboard(Page{}, screenFor(user, session.StateIdle), NoopRenderer{}, AdminView{}))
	assert.NotContains(t, out, "Manage Items")
	assert.Contains(t, out, "Standard User")
}

func TestCopilotItemRendersIframe(t *testing.T) {
	out := render(t, Dashboard(Page{}, screenFor(user, session.StateViewing), BrowserRenderer{}, AdminView{}))
	assert.Contains(t, out, "<iframe")
	assert.Contains(t, out, `allow="microphone"`)
	assert.Contains(t, out, "Copilot Studio")
}

func TestPowerBIItemRendersEmbedContainer(t *testing.T) {
	screen := screenFor(admin, session.StateViewing)
	screen.Item = &screen.Menu[1]

	out := render(t, Dashboard(Page{}, screen, BrowserRenderer{}, AdminView{}))
	assert.Contains(t, out, `id="powerbi-container-demo-powerbi"`)
	assert.Contains(t, out, `data-embed-endpoint="/api/menu/demo-powerbi/embed"`)
	assert.Contains(t, out, "Try Again")
	assert.Contains(t, out, "Power BI configuration incomplete")
	assert.Contains(t, out, PowerBISDKURL)
}

func TestPowerBIScriptHandlesSDKEvents(t *testing.T) {
	screen := screenFor(admin, session.StateViewing)
	screen.Item = &screen.Menu[1]

	out := render(t, Dashboard(Page{}, screen, BrowserRenderer{}, AdminView{}))
	for _, event := range []string{"loaded", "rendered", "error"} {
		assert.Contains(t, out, "report.on('"+event+"'")
	}
	assert.Contains(t, out, "settings: {")
}

func TestAdminPanelFormAndDeleteConfirmation(t *testing.T) {
	screen := screenFor(admin, session.StateAdministering)
	form := FormFromItem(screen.Menu[1])

	out := render(t, Dashboard(Page{CSRFToken: "tok"}, screen, NoopRenderer{}, AdminView{Form: &form, ConfirmDelete: "demo-copilot"}))
	assert.Contains(t, out, "Menu Management")
	assert.Contains(t, out, `action="/admin/items/demo-powerbi"`)
	assert.Contains(t, out, `name="reportId"`)
	assert.NotContains(t, out, `name="embedUrl"`)
	assert.Contains(t, out, "Delete this item?")
	assert.Contains(t, out, `action="/admin/items/demo-copilot/delete"`)
	assert.Equal(t, len(catalogue.AvailableIcons), strings.Count(out, `name="icon"`))
}

func TestNewItemFormDefaults(t *testing.T) {
	form := NewItemForm("unknown")
	assert.Equal(t, models.ItemTypeCopilot, form.Type)
	assert.Equal(t, catalogue.DefaultIcon, form.Icon)

	out := render(t, itemForm(Page{}, &form))
	assert.Contains(t, out, `action="/admin/items"`)
	assert.Contains(t, out, `name="embedUrl"`)
}

func TestLucideName(t *testing.T) {
	for in, want := range map[string]string{
		"MessageSquare": "message-square",
		"BarChart3":     "bar-chart-3",
		"Bot":           "bot",
	} {
		assert.Equal(t, want, lucideName(in))
	}
}
