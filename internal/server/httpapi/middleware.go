package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/dmitrijs2005/expensekeeper/internal/logging"
	"github.com/dmitrijs2005/expensekeeper/internal/server/auth"
	"github.com/google/uuid"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// ClaimsFrom returns the session claims placed by RequireSession.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

// requestID reuses an incoming X-Request-ID or mints one, echoes it on the
// response and stores it in the request context for logging.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (a *API) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		a.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}

// requireSession rejects requests without a valid session cookie with 401.
func (a *API) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		claims, err := a.users.Authenticate(token)
		if err != nil {
			a.logger.Debug(r.Context(), "session rejected", "reason", err.Error())
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// pageGate applies the access gate to page requests with a 307 redirect.
func (a *API) pageGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch a.gate.Decide(r.URL.Path, sessionToken(r)) {
		case auth.RedirectToLogin:
			http.Redirect(w, r, a.gate.LoginPath(), http.StatusTemporaryRedirect)
		case auth.RedirectToApp:
			http.Redirect(w, r, a.gate.AppPath(), http.StatusTemporaryRedirect)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
