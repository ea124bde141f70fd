package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"enterprise-portal/internal/models"
	"enterprise-portal/internal/session"

	"go.uber.org/zap"
)

type authContextKey struct{}

type authInfo struct {
	SID  string
	User models.User
}

// resolveSession reads the session cookie. An invalid or expired token is
// treated as no session.
func (h *Handler) resolveSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil || strings.TrimSpace(cookie.Value) == "" {
			next.ServeHTTP(w, r)
			return
		}
		sid, err := h.tokens.Parse(strings.TrimSpace(cookie.Value))
		if err != nil {
			h.logger.Debug("ignoring session cookie", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), authContextKey{}, authInfo{SID: sid})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authFromContext(ctx context.Context) (authInfo, bool) {
	value := ctx.Value(authContextKey{})
	if value == nil {
		return authInfo{}, false
	}
	info, ok := value.(authInfo)
	if !ok {
		return authInfo{}, false
	}
	return info, true
}

func sessionIDFromRequest(r *http.Request) string {
	info, _ := authFromContext(r.Context())
	return info.SID
}

// currentUser loads the logged-in user for the request's session.
func (h *Handler) currentUser(r *http.Request) (authInfo, bool, error) {
	info, ok := authFromContext(r.Context())
	if !ok {
		return authInfo{}, false, nil
	}
	var user models.User
	var loggedIn bool
	err := h.sessions.With(r.Context(), info.SID, func(c *session.Controller) error {
		user, loggedIn = c.User()
		return nil
	})
	if err != nil || !loggedIn {
		return authInfo{}, false, err
	}
	info.User = user
	return info, true, nil
}

func (h *Handler) withUser(onMissing func(http.ResponseWriter, *http.Request), next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, ok, err := h.currentUser(r)
		if err != nil {
			h.logger.Error("load session", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		if !ok {
			onMissing(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), authContextKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireUser(next http.Handler) http.Handler {
	return h.withUser(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "unauthorized", "login required")
	}, next)
}

func (h *Handler) requireUserFlat(next http.Handler) http.Handler {
	return h.withUser(func(w http.ResponseWriter, r *http.Request) {
		writeFlatError(w, http.StatusUnauthorized, "Unauthorized")
	}, next)
}

func (h *Handler) requirePageUser(next http.Handler) http.Handler {
	return h.withUser(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}, next)
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, ok := authFromContext(r.Context())
		if !ok || !info.User.IsAdmin() {
			writeError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userFromContext(ctx context.Context) models.User {
	info, _ := authFromContext(ctx)
	return info.User
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sid string) error {
	token, expiresAt, err := h.tokens.Issue(sid)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	})
	return nil
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// logout ends the session for the request, if any.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if sid := sessionIDFromRequest(r); sid != "" {
		_ = h.sessions.With(r.Context(), sid, func(c *session.Controller) error {
			c.Logout(r.Context())
			return nil
		})
		h.sessions.Forget(sid)
	}
	h.clearSessionCookie(w)
}
