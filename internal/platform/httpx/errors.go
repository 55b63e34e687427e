package httpx

import (
	"errors"
	"net/http"

	"github.com/atlas-crm/atlas-crm/internal/shared"
)

// RespondError maps domain errors onto the admin API failure envelope.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, shared.ErrDuplicate):
		Fail(w, http.StatusBadRequest, "Username or email already exists")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, shared.ErrAccountLocked):
		Fail(w, http.StatusUnauthorized, "Account is temporarily locked due to multiple failed login attempts")
	case errors.Is(err, shared.ErrAccountInactive):
		Fail(w, http.StatusUnauthorized, "Account is deactivated")
	default:
		Fail(w, http.StatusInternalServerError, "Internal server error")
	}
}
