package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"enterprise-portal/internal/catalogue"
	"enterprise-portal/internal/models"
	"enterprise-portal/internal/powerbi"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgMissingConfig    = "Missing required configuration"
	msgTokenFailed      = "Failed to acquire access token"
	msgEmbedTokenFailed = "Failed to generate embed token"
	msgInternal         = "Internal server error"
)

// embedRequest mirrors models.PowerBIConfig; unknown fields are ignored.
type embedRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	TenantID     string `json:"tenantId"`
	WorkspaceID  string `json:"workspaceId"`
	ReportID     string `json:"reportId"`
}

func (h *Handler) handleEmbed(w http.ResponseWriter, r *http.Request) {
	var req embedRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("malformed embed request", zap.Error(err))
		h.metrics.observeEmbed("error")
		writeFlatError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	if req.ClientID == "" || req.ClientSecret == "" || req.TenantID == "" || req.WorkspaceID == "" || req.ReportID == "" {
		h.metrics.observeEmbed("config_invalid")
		writeFlatError(w, http.StatusBadRequest, msgMissingConfig)
		return
	}
	h.exchange(w, r, models.PowerBIConfig{
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		TenantID:     req.TenantID,
		WorkspaceID:  req.WorkspaceID,
		ReportID:     req.ReportID,
	})
}

// handleItemEmbed exchanges the stored configuration of a catalogue item,
// so the browser never sees the client secret.
func (h *Handler) handleItemEmbed(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalogue.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalogue.ErrItemNotFound) {
			writeFlatError(w, http.StatusNotFound, "Menu item not found")
			return
		}
		h.logger.Error("load menu item", zap.Error(err))
		writeFlatError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	cfg, ok := item.Config.(models.PowerBIConfig)
	if !ok {
		writeFlatError(w, http.StatusBadRequest, "Menu item is not a Power BI report")
		return
	}
	h.exchange(w, r, cfg)
}

func (h *Handler) exchange(w http.ResponseWriter, r *http.Request, cfg models.PowerBIConfig) {
	descriptor, err := h.exchanger.AcquireEmbed(r.Context(), cfg)
	if err == nil {
		h.metrics.observeEmbed("success")
		writeJSON(w, http.StatusOK, descriptor)
		return
	}

	var exErr *powerbi.ExchangeError
	switch {
	case errors.Is(err, powerbi.ErrConfigInvalid):
		h.metrics.observeEmbed("config_invalid")
		writeFlatError(w, http.StatusBadRequest, msgMissingConfig)
	case errors.As(err, &exErr) && exErr.Kind == powerbi.TokenAcquisitionFailed:
		h.metrics.observeEmbed("token_failed")
		h.logger.Warn("access token acquisition failed", zap.Error(err))
		writeFlatError(w, http.StatusInternalServerError, msgTokenFailed)
	case errors.As(err, &exErr) && exErr.Kind == powerbi.EmbedTokenFailed:
		h.metrics.observeEmbed("embed_failed")
		h.logger.Warn("embed token generation failed", zap.Error(err))
		writeFlatError(w, exErr.HTTPStatus(), msgEmbedTokenFailed)
	default:
		h.metrics.observeEmbed("error")
		h.logger.Error("embed exchange", zap.Error(err))
		writeFlatError(w, http.StatusInternalServerError, msgInternal)
	}
}
