package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"enterprise-portal/internal/auth"
	"enterprise-portal/internal/catalogue"
	"enterprise-portal/internal/models"
	"enterprise-portal/internal/session"
	"enterprise-portal/internal/view"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var notices = map[string]string{
	"created":   "Menu item created",
	"updated":   "Menu item updated",
	"deleted":   "Menu item deleted",
	"reordered": "Menu order saved",
}

func (h *Handler) page(r *http.Request) view.Page {
	return view.Page{
		CSRFToken: csrfToken(r),
		Notice:    notices[r.URL.Query().Get("notice")],
	}
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, ok, err := h.currentUser(r)
	if err != nil {
		h.logger.Error("load session", zap.Error(err))
	}
	if !ok {
		view.Render(w, http.StatusOK, view.LoginPage(h.page(r), "", h.demo))
		return
	}
	h.renderScreen(w, r, http.StatusOK, h.page(r), view.AdminView{}, func(ctx context.Context, c *session.Controller) error {
		return c.Home(ctx)
	})
}

func (h *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		view.Render(w, http.StatusBadRequest, view.LoginPage(view.Page{CSRFToken: csrfToken(r), Error: "Invalid form submission"}, "", h.demo))
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	sid, _, err := h.login(r, email, password)
	if err != nil {
		status := http.StatusUnauthorized
		message := invalidCredentialsMessage
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("login", zap.Error(err))
			status = http.StatusInternalServerError
			message = "Sign in failed, please try again"
		}
		view.Render(w, status, view.LoginPage(view.Page{CSRFToken: csrfToken(r), Error: message}, email, h.demo))
		return
	}
	if err := h.setSessionCookie(w, sid); err != nil {
		h.logger.Error("issue session cookie", zap.Error(err))
		view.Render(w, http.StatusInternalServerError, view.ErrorPage("Sign in failed", "Could not start a session."))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleLogoutForm(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleItemPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.sessions.With(r.Context(), sessionIDFromRequest(r), func(c *session.Controller) error {
		return c.SelectItem(r.Context(), id)
	})
	if errors.Is(err, catalogue.ErrItemNotFound) {
		p := h.page(r)
		p.Error = "That menu item no longer exists"
		h.renderScreen(w, r, http.StatusNotFound, p, view.AdminView{}, nil)
		return
	}
	if err != nil {
		h.renderFailure(w, err)
		return
	}
	h.renderScreen(w, r, http.StatusOK, h.page(r), view.AdminView{}, nil)
}

func (h *Handler) handleAdminPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	p := h.page(r)
	admin := view.AdminView{ConfirmDelete: query.Get("confirm")}
	switch {
	case query.Get("new") != "":
		form := view.NewItemForm(models.ItemType(query.Get("new")))
		admin.Form = &form
	case query.Get("edit") != "":
		item, err := h.catalogue.Get(r.Context(), query.Get("edit"))
		if err != nil {
			p.Error = "That menu item no longer exists"
			break
		}
		form := view.FormFromItem(item)
		admin.Form = &form
	}
	h.renderAdmin(w, r, http.StatusOK, p, admin)
}

func (h *Handler) handleCreateItemForm(w http.ResponseWriter, r *http.Request) {
	if !h.requirePageAdmin(w, r) {
		return
	}
	form, input, err := parseItemForm(r)
	if err == nil {
		input.CreatedBy = userFromContext(r.Context()).Email
		_, err = h.catalogue.Create(r.Context(), input)
	}
	if err != nil {
		h.renderFormError(w, r, form, err)
		return
	}
	http.Redirect(w, r, "/admin?notice=created", http.StatusSeeOther)
}

func (h *Handler) handleUpdateItemForm(w http.ResponseWriter, r *http.Request) {
	if !h.requirePageAdmin(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	form, input, err := parseItemForm(r)
	form.ID = id
	if err == nil {
		_, err = h.catalogue.Update(r.Context(), id, catalogue.Patch{
			Name:   &input.Name,
			Icon:   &input.Icon,
			Config: input.Config,
			Order:  input.Order,
		})
	}
	if err != nil {
		h.renderFormError(w, r, form, err)
		return
	}
	http.Redirect(w, r, "/admin?notice=updated", http.StatusSeeOther)
}

func (h *Handler) handleDeleteItemForm(w http.ResponseWriter, r *http.Request) {
	if !h.requirePageAdmin(w, r) {
		return
	}
	removed, err := h.catalogue.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil || !removed {
		p := h.page(r)
		p.Error = catalogueMessage(err)
		h.renderAdmin(w, r, statusFor(err), p, view.AdminView{})
		return
	}
	http.Redirect(w, r, "/admin?notice=deleted", http.StatusSeeOther)
}

func (h *Handler) handleReorderForm(w http.ResponseWriter, r *http.Request) {
	if !h.requirePageAdmin(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		p := h.page(r)
		p.Error = "Invalid form submission"
		h.renderAdmin(w, r, http.StatusBadRequest, p, view.AdminView{})
		return
	}
	if err := h.catalogue.Reorder(r.Context(), r.PostForm["ids"]); err != nil {
		p := h.page(r)
		p.Error = catalogueMessage(err)
		h.renderAdmin(w, r, statusFor(err), p, view.AdminView{})
		return
	}
	http.Redirect(w, r, "/admin?notice=reordered", http.StatusSeeOther)
}

func (h *Handler) requirePageAdmin(w http.ResponseWriter, r *http.Request) bool {
	if userFromContext(r.Context()).IsAdmin() {
		return true
	}
	p := h.page(r)
	p.Error = "Admin access required"
	h.renderScreen(w, r, http.StatusForbidden, p, view.AdminView{}, nil)
	return false
}

func (h *Handler) renderAdmin(w http.ResponseWriter, r *http.Request, status int, p view.Page, admin view.AdminView) {
	err := h.sessions.With(r.Context(), sessionIDFromRequest(r), func(c *session.Controller) error {
		return c.OpenAdmin(r.Context())
	})
	if errors.Is(err, session.ErrForbidden) {
		p.Error = "Admin access required"
		h.renderScreen(w, r, http.StatusForbidden, p, view.AdminView{}, nil)
		return
	}
	if err != nil {
		h.renderFailure(w, err)
		return
	}
	h.renderScreen(w, r, status, p, admin, nil)
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, form view.ItemForm, err error) {
	p := h.page(r)
	p.Error = catalogueMessage(err)
	h.renderAdmin(w, r, statusFor(err), p, view.AdminView{Form: &form})
}

// renderScreen applies an optional transition and renders the resulting
// screen.
func (h *Handler) renderScreen(w http.ResponseWriter, r *http.Request, status int, p view.Page, admin view.AdminView, transition func(context.Context, *session.Controller) error) {
	var screen session.Screen
	err := h.sessions.With(r.Context(), sessionIDFromRequest(r), func(c *session.Controller) error {
		if transition != nil {
			if err := transition(r.Context(), c); err != nil {
				return err
			}
		}
		var err error
		screen, err = c.View(r.Context())
		return err
	})
	if err != nil {
		h.renderFailure(w, err)
		return
	}
	if screen.State == session.StateLoggedOut {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	view.Render(w, status, view.Dashboard(p, screen, h.renderer, admin))
}

func (h *Handler) renderFailure(w http.ResponseWriter, err error) {
	h.logger.Error("render page", zap.Error(err))
	view.Render(w, http.StatusInternalServerError, view.ErrorPage("Something went wrong", "The portal could not load this page."))
}

var errInvalidOrder = errors.New("order must be a whole number")

// parseItemForm reads the admin form. The returned form echoes the
// submitted values so a rejected submission can be redisplayed.
func parseItemForm(r *http.Request) (view.ItemForm, catalogue.NewItem, error) {
	if err := r.ParseForm(); err != nil {
		return view.ItemForm{}, catalogue.NewItem{}, err
	}
	get := func(key string) string { return strings.TrimSpace(r.PostForm.Get(key)) }
	form := view.ItemForm{
		Name:         get("name"),
		Icon:         get("icon"),
		Type:         models.ItemType(get("type")),
		Order:        get("order"),
		EmbedURL:     get("embedUrl"),
		ClientID:     get("clientId"),
		ClientSecret: get("clientSecret"),
		TenantID:     get("tenantId"),
		WorkspaceID:  get("workspaceId"),
		ReportID:     get("reportId"),
	}
	if form.Icon == "" {
		form.Icon = catalogue.DefaultIcon
	}

	input := catalogue.NewItem{Name: form.Name, Icon: form.Icon}
	switch form.Type {
	case models.ItemTypePowerBI:
		input.Config = models.PowerBIConfig{
			ClientID:     form.ClientID,
			ClientSecret: form.ClientSecret,
			TenantID:     form.TenantID,
			WorkspaceID:  form.WorkspaceID,
			ReportID:     form.ReportID,
		}
	default:
		form.Type = models.ItemTypeCopilot
		input.Config = models.CopilotConfig{EmbedURL: form.EmbedURL}
	}
	if form.Order != "" {
		order, err := strconv.Atoi(form.Order)
		if err != nil {
			return form, input, errInvalidOrder
		}
		input.Order = &order
	}
	return form, input, nil
}

func catalogueMessage(err error) string {
	switch {
	case err == nil, errors.Is(err, catalogue.ErrItemNotFound):
		return "That menu item no longer exists"
	case errors.Is(err, errInvalidOrder):
		return "Order must be a whole number"
	case errors.Is(err, catalogue.ErrInvalidItem):
		return "Please check the item: a name and a complete configuration are required"
	default:
		return "The menu could not be saved, please try again"
	}
}

func statusFor(err error) int {
	switch {
	case err == nil, errors.Is(err, catalogue.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, errInvalidOrder), errors.Is(err, catalogue.ErrInvalidItem):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
