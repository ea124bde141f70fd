package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type ItemType string

const (
	ItemTypeCopilot ItemType = "copilot"
	ItemTypePowerBI ItemType = "powerbi"
)

var ErrUnknownItemType = errors.New("unknown menu item type")

// ItemConfig is the per-type configuration of a menu item. The only
// implementations are CopilotConfig and PowerBIConfig.
type ItemConfig interface {
	ItemType() ItemType
	isItemConfig()
}

type CopilotConfig struct {
	EmbedURL string `json:"embedUrl"`
}

func (CopilotConfig) ItemType() ItemType { return ItemTypeCopilot }
func (CopilotConfig) isItemConfig()      {}

type PowerBIConfig struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	TenantID     string `json:"tenantId"`
	WorkspaceID  string `json:"workspaceId"`
	ReportID     string `json:"reportId"`
}

func (PowerBIConfig) ItemType() ItemType { return ItemTypePowerBI }
func (PowerBIConfig) isItemConfig()      {}

type MenuItem struct {
	ID        string
	Name      string
	Icon      string
	Config    ItemConfig
	Order     int
	CreatedAt time.Time
	CreatedBy string
}

// Type reports the item type, which always follows the config variant.
func (m MenuItem) Type() ItemType {
	if m.Config == nil {
		return ""
	}
	return m.Config.ItemType()
}

// Redacted returns a copy of the item safe to show to non-admin users.
func (m MenuItem) Redacted() MenuItem {
	if cfg, ok := m.Config.(PowerBIConfig); ok {
		cfg.ClientSecret = ""
		m.Config = cfg
	}
	return m
}

type menuItemJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Icon      string          `json:"icon"`
	Type      ItemType        `json:"type"`
	Config    json.RawMessage `json:"config"`
	Order     int             `json:"order"`
	CreatedAt time.Time       `json:"createdAt"`
	CreatedBy string          `json:"createdBy"`
}

func (m MenuItem) MarshalJSON() ([]byte, error) {
	raw, err := EncodeConfig(m.Config)
	if err != nil {
		return nil, err
	}
	return json.Marshal(menuItemJSON{
		ID:        m.ID,
		Name:      m.Name,
		Icon:      m.Icon,
		Type:      m.Type(),
		Config:    raw,
		Order:     m.Order,
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	})
}

func (m *MenuItem) UnmarshalJSON(data []byte) error {
	var wire menuItemJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	cfg, err := DecodeConfig(wire.Type, wire.Config)
	if err != nil {
		return fmt.Errorf("menu item %q: %w", wire.ID, err)
	}
	*m = MenuItem{
		ID:        wire.ID,
		Name:      wire.Name,
		Icon:      wire.Icon,
		Config:    cfg,
		Order:     wire.Order,
		CreatedAt: wire.CreatedAt,
		CreatedBy: wire.CreatedBy,
	}
	return nil
}

func EncodeConfig(cfg ItemConfig) (json.RawMessage, error) {
	switch c := cfg.(type) {
	case CopilotConfig:
		return json.Marshal(c)
	case PowerBIConfig:
		return json.Marshal(c)
	case nil:
		return nil, fmt.Errorf("%w: missing config", ErrUnknownItemType)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownItemType, cfg)
	}
}

// DecodeConfig parses raw config JSON into the variant selected by itemType.
func DecodeConfig(itemType ItemType, raw json.RawMessage) (ItemConfig, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	switch itemType {
	case ItemTypeCopilot:
		var cfg CopilotConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	case ItemTypePowerBI:
		var cfg PowerBIConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownItemType, itemType)
	}
}

type EmbedDescriptor struct {
	EmbedToken string     `json:"embedToken"`
	EmbedURL   string     `json:"embedUrl"`
	ReportID   string     `json:"reportId"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}
