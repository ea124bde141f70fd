package catalogue

import (
	"time"

	"enterprise-portal/internal/models"
)

const (
	StorageKey   = "portal_menu_items"
	DefaultOrder = 999
	DefaultIcon  = "MessageSquare"
	seedOwner    = "admin@admin.com"
)

// AvailableIcons is the icon set offered by the admin form.
var AvailableIcons = []string{
	"MessageSquare",
	"Bot",
	"BarChart3",
	"PieChart",
	"LineChart",
	"Gauge",
	"Zap",
	"Database",
}

// Defaults returns the seed catalogue written on first use.
func Defaults(now time.Time) []models.MenuItem {
	return []models.MenuItem{
		{
			ID:   "demo-copilot",
			Name: "Support Assistant",
			Icon: "MessageSquare",
			Config: models.CopilotConfig{
				EmbedURL: "https://copilotstudio.microsoft.com/environments/Default-xxxx",
			},
			Order:     0,
			CreatedAt: now,
			CreatedBy: seedOwner,
		},
		{
			ID:   "demo-powerbi",
			Name: "Sales Dashboard",
			Icon: "BarChart3",
			Config: models.PowerBIConfig{
				ClientID:     "your-client-id",
				ClientSecret: "your-client-secret",
				TenantID:     "your-tenant-id",
				WorkspaceID:  "your-workspace-id",
				ReportID:     "your-report-id",
			},
			Order:     1,
			CreatedAt: now,
			CreatedBy: seedOwner,
		},
	}
}
