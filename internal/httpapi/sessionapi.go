package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"enterprise-portal/internal/auth"
	"enterprise-portal/internal/catalogue"
	"enterprise-portal/internal/models"
	"enterprise-portal/internal/session"

	"go.uber.org/zap"
)

const invalidCredentialsMessage = "Invalid email or password"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User models.User `json:"user"`
}

type selectRequest struct {
	ID string `json:"id"`
}

// login authenticates into a fresh session id and retires the previous
// session of the request, if any.
func (h *Handler) login(r *http.Request, email, password string) (string, models.User, error) {
	sid := h.sessions.New()
	var user models.User
	err := h.sessions.With(r.Context(), sid, func(c *session.Controller) error {
		var err error
		user, err = c.Login(r.Context(), email, password)
		return err
	})
	if err != nil {
		h.sessions.Forget(sid)
		return "", models.User{}, err
	}
	if old := sessionIDFromRequest(r); old != "" && old != sid {
		_ = h.sessions.With(r.Context(), old, func(c *session.Controller) error {
			c.Logout(r.Context())
			return nil
		})
		h.sessions.Forget(old)
	}
	return sid, user, nil
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	sid, user, err := h.login(r, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid_credentials", invalidCredentialsMessage)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "unavailable", "request cancelled")
		default:
			h.logger.Error("login", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		}
		return
	}
	if err := h.setSessionCookie(w, sid); err != nil {
		h.logger.Error("issue session cookie", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userResponse{User: userFromContext(r.Context())})
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, nil)
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}
	h.navigate(w, r, func(ctx context.Context, c *session.Controller) error {
		return c.SelectItem(ctx, id)
	})
}

func (h *Handler) handleOpenAdmin(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, func(ctx context.Context, c *session.Controller) error {
		return c.OpenAdmin(ctx)
	})
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, func(ctx context.Context, c *session.Controller) error {
		return c.Home(ctx)
	})
}

// navigate applies an optional transition and responds with the resulting
// screen.
func (h *Handler) navigate(w http.ResponseWriter, r *http.Request, transition func(context.Context, *session.Controller) error) {
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
		switch {
		case errors.Is(err, catalogue.ErrItemNotFound):
			writeError(w, http.StatusNotFound, "not_found", "menu item not found")
		case errors.Is(err, session.ErrForbidden):
			writeError(w, http.StatusForbidden, "forbidden", "admin role required")
		case errors.Is(err, session.ErrNotLoggedIn):
			writeError(w, http.StatusUnauthorized, "unauthorized", "login required")
		default:
			h.logger.Error("session transition", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, screen)
}
