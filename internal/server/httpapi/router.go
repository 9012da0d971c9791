// Package httpapi is the browser-facing HTTP boundary: signup, login and
// logout endpoints, session-protected API routes and the page gate in front
// of the static pages.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/expensekeeper/internal/logging"
	"github.com/dmitrijs2005/expensekeeper/internal/server/auth"
	"github.com/dmitrijs2005/expensekeeper/internal/server/services"
	"github.com/gorilla/mux"
)

// UserService is the part of services.UserService the HTTP layer uses.
type UserService interface {
	Signup(ctx context.Context, req services.SignupRequest) (*services.SignupResult, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Authenticate(token string) (*auth.Claims, error)
}

type API struct {
	users   UserService
	gate    *auth.Gate
	cookies sessionCookies
	logger  logging.Logger
}

// NewAPI builds the HTTP API. secureCookies sets the Secure cookie flag.
func NewAPI(users UserService, gate *auth.Gate, secureCookies bool, logger logging.Logger) *API {
	return &API{
		users:   users,
		gate:    gate,
		cookies: sessionCookies{secure: secureCookies},
		logger:  logger.With("module", "httpapi"),
	}
}

// Router wires the API routes and serves everything else through pages,
// guarded by the page gate.
func (a *API) Router(pages http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestID, a.accessLog)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/signup", a.signup).Methods(http.MethodPost)
	api.HandleFunc("/login", a.login).Methods(http.MethodPost)
	api.HandleFunc("/logout", a.logout).Methods(http.MethodPost)
	api.Handle("/session", a.requireSession(http.HandlerFunc(a.session))).Methods(http.MethodGet)

	r.PathPrefix("/").Handler(a.pageGate(pages))

	return r
}
