package httpx

import (
	"errors"
	"net/http"

	"github.com/fitdesk/fitdesk/internal/authz"
	"github.com/fitdesk/fitdesk/internal/shared"
)

// RespondError maps domain and authorization errors to the API error
// contract. Authentication failures are 401 UNAUTHENTICATED; policy denials
// are 403 INSUFFICIENT_PERMISSIONS with a message naming role, action and
// resource.
func RespondError(w http.ResponseWriter, err error) {
	var perr *authz.PermissionError
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		Error(w, http.StatusUnauthorized, "UNAUTHENTICATED", "")
	case errors.As(err, &perr):
		Error(w, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", perr.Error())
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Error(w, http.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Error(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	default:
		Error(w, http.StatusInternalServerError, "INTERNAL", "")
	}
}
