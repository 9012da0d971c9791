package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
)

const (
	msgUnauthorized = "Unauthorized"
	msgInternal     = "Something went wrong"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorTable is checked in order, so specific validation errors come before
// the generic ErrValidation entry.
var errorTable = []errorMapping{
	{common.ErrMissingCredentials, http.StatusBadRequest, "Email and password are required"},
	{common.ErrInvalidEmailFormat, http.StatusBadRequest, "Invalid email format"},
	{common.ErrEmailDomainNotAllowed, http.StatusBadRequest, "Email domain is not allowed"},
	{common.ErrPasswordTooShort, http.StatusBadRequest, "Password must be at least 8 characters"},
	{common.ErrPasswordTooLong, http.StatusBadRequest, "Password must be at most 72 bytes"},
	{common.ErrValidation, http.StatusBadRequest, "Invalid request"},
	{common.ErrDuplicateIdentity, http.StatusConflict, "Email already exists"},
	{common.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{common.ErrInvalidSignature, http.StatusUnauthorized, msgUnauthorized},
	{common.ErrTokenExpired, http.StatusUnauthorized, msgUnauthorized},
	{common.ErrorUnauthorized, http.StatusUnauthorized, msgUnauthorized},
}

// statusFor maps err to an HTTP status and the public message. Anything
// not in the table is a 500 with a generic message.
func statusFor(err error) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, msgInternal
}
