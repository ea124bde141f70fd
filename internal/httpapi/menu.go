package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"enterprise-portal/internal/catalogue"
	"enterprise-portal/internal/models"
	"enterprise-portal/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type menuResponse struct {
	Items []models.MenuItem `json:"items"`
}

type createItemRequest struct {
	Name   string          `json:"name"`
	Icon   string          `json:"icon"`
	Type   models.ItemType `json:"type"`
	Config json.RawMessage `json:"config"`
	Order  *int            `json:"order"`
}

// updateItemRequest is a shallow patch. A config without a type keeps the
// item's current type.
type updateItemRequest struct {
	Name   *string         `json:"name"`
	Icon   *string         `json:"icon"`
	Type   models.ItemType `json:"type"`
	Config json.RawMessage `json:"config"`
	Order  *int            `json:"order"`
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

func (h *Handler) handleListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalogue.List(r.Context())
	if err != nil {
		h.writeCatalogueError(w, err)
		return
	}
	if !userFromContext(r.Context()).IsAdmin() {
		for i := range items {
			items[i] = items[i].Redacted()
		}
	}
	writeJSON(w, http.StatusOK, menuResponse{Items: items})
}

func (h *Handler) handleAdminList(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalogue.List(r.Context())
	if err != nil {
		h.writeCatalogueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, menuResponse{Items: items})
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalogue.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCatalogueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "type is required")
		return
	}
	cfg, err := models.DecodeConfig(req.Type, req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	item, err := h.catalogue.Create(r.Context(), catalogue.NewItem{
		Name:      req.Name,
		Icon:      req.Icon,
		Config:    cfg,
		Order:     req.Order,
		CreatedBy: userFromContext(r.Context()).Email,
	})
	if err != nil {
		h.writeCatalogueError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateItemRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	patch := catalogue.Patch{Name: req.Name, Icon: req.Icon, Order: req.Order}
	if len(req.Config) > 0 || req.Type != "" {
		current, err := h.catalogue.Get(r.Context(), id)
		if err != nil {
			h.writeCatalogueError(w, err)
			return
		}
		itemType := req.Type
		if itemType == "" {
			itemType = current.Type()
		}
		switch {
		case len(req.Config) > 0:
			cfg, err := models.DecodeConfig(itemType, req.Config)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
				return
			}
			patch.Config = cfg
		case itemType != current.Type():
			writeError(w, http.StatusBadRequest, "invalid_request", "config is required when type changes")
			return
		}
	}

	item, err := h.catalogue.Update(r.Context(), id, patch)
	if err != nil {
		h.writeCatalogueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	removed, err := h.catalogue.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCatalogueError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "not_found", "menu item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if err := h.catalogue.Reorder(r.Context(), ids); err != nil {
		h.writeCatalogueError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeCatalogueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalogue.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "not_found", "menu item not found")
	case errors.Is(err, catalogue.ErrInvalidItem):
		writeError(w, http.StatusBadRequest, "invalid_item", err.Error())
	case errors.Is(err, store.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "menu storage is unavailable")
	default:
		h.logger.Error("catalogue", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
