package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestMenuItemJSONCarriesTypeFromConfig(t *testing.T) {
	item := MenuItem{
		ID:        "item-1",
		Name:      "Sales",
		Icon:      "BarChart3",
		Config:    PowerBIConfig{ClientID: "c", ClientSecret: "s", TenantID: "t", WorkspaceID: "w", ReportID: "r"},
		Order:     2,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		CreatedBy: "admin@admin.com",
	}
	raw, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal wire: %v", err)
	}
	if wire["type"] != "powerbi" {
		t.Fatalf("expected type powerbi, got %v", wire["type"])
	}
	cfg, ok := wire["config"].(map[string]any)
	if !ok || cfg["reportId"] != "r" {
		t.Fatalf("unexpected config on the wire: %v", wire["config"])
	}

	var decoded MenuItem
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded.Config.(PowerBIConfig); !ok {
		t.Fatalf("expected PowerBIConfig, got %T", decoded.Config)
	}
	if !decoded.CreatedAt.Equal(item.CreatedAt) {
		t.Fatalf("createdAt changed: %v", decoded.CreatedAt)
	}
}

func TestDecodeConfigRejectsUnknownType(t *testing.T) {
	_, err := DecodeConfig("iframe", json.RawMessage(`{"embedUrl":"https://x"}`))
	if !errors.Is(err, ErrUnknownItemType) {
		t.Fatalf("expected ErrUnknownItemType, got %v", err)
	}
}

func TestRedactedDropsClientSecret(t *testing.T) {
	item := MenuItem{Config: PowerBIConfig{ClientID: "c", ClientSecret: "secret"}}
	redacted := item.Redacted()
	cfg := redacted.Config.(PowerBIConfig)
	if cfg.ClientSecret != "" {
		t.Fatalf("expected secret removed, got %q", cfg.ClientSecret)
	}
	if item.Config.(PowerBIConfig).ClientSecret != "secret" {
		t.Fatal("redaction mutated the original item")
	}

	copilot := MenuItem{Config: CopilotConfig{EmbedURL: "https://x"}}
	if copilot.Redacted().Config.(CopilotConfig).EmbedURL != "https://x" {
		t.Fatal("copilot config should be untouched")
	}
}
