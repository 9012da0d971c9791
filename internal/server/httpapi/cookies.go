package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/dmitrijs2005/expensekeeper/internal/server/auth"
)

// sessionCookies builds the session cookie. Secure is set in production only
// so local development over plain HTTP still works.
type sessionCookies struct {
	secure bool
}

func (c sessionCookies) issue(token string) *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.secure,
	}
}

// clear emits the same cookie with Max-Age=0.
func (c sessionCookies) clear() *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.secure,
	}
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(common.SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
