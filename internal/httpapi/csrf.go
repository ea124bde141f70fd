package httpapi

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"enterprise-portal/internal/view"
)

const csrfCookieName = "portal_csrf"

type csrfContextKey struct{}

func (h *Handler) ensureCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := readCSRFCookie(r)
		if token == "" {
			token = randomToken(32)
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   h.cookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), csrfContextKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		cookieToken := readCSRFCookie(r)
		formToken := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
		if formToken == "" {
			_ = r.ParseForm()
			formToken = strings.TrimSpace(r.PostForm.Get("csrf_token"))
		}
		if cookieToken == "" || subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) != 1 {
			view.Render(w, http.StatusForbidden, view.ErrorPage("Request Rejected", "Invalid or missing CSRF token. Reload the page and try again."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func csrfToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey{}).(string)
	if token == "" {
		token = readCSRFCookie(r)
	}
	return token
}

func readCSRFCookie(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func randomToken(size int) string {
	if size < 16 {
		size = 16
	}
	b := make([]byte, size)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
