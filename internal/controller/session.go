package controller

import (
	"net/http"

	"github.com/google/uuid"
)

const sessionCookieName = "storefront_session"

// sessionID returns the caller's session id, issuing a new cookie on first
// touch. The cookie is plumbing for cart scoping, not authentication.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
