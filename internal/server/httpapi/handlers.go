package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/expensekeeper/internal/server/services"
)

const maxBodyBytes = 1 << 20

type signupBody struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupUser struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type signupResponse struct {
	Message string     `json:"message"`
	User    signupUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type sessionResponse struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// fail logs unexpected errors and writes the mapped response.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		a.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
	}
	writeError(w, status, msg)
}

func (a *API) signup(w http.ResponseWriter, r *http.Request) {
	var body signupBody
	if !decodeBody(w, r, &body) {
		return
	}

	res, err := a.users.Signup(r.Context(), services.SignupRequest{
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	http.SetCookie(w, a.cookies.issue(res.Token))
	writeJSON(w, http.StatusCreated, signupResponse{
		Message: "Signup successful",
		User:    signupUser{ID: res.User.ID, CreatedAt: res.User.CreatedAt},
	})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decodeBody(w, r, &body) {
		return
	}

	res, err := a.users.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	http.SetCookie(w, a.cookies.issue(res.Token))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Login successful"})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, a.cookies.clear())
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (a *API) session(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	resp := sessionResponse{UserID: claims.Subject, Role: string(claims.Role)}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	writeJSON(w, http.StatusOK, resp)
}
