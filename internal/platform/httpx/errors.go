package httpx

import (
	"errors"
	"net/http"

	"github.com/atlas-erp/atlas-erp/internal/shared"
)

// RespondError maps the shared error categories to RFC7807 responses.
// Domain sentinels wrap the shared categories, so errors.Is resolves the
// status regardless of which module produced the error. Anything unmapped
// becomes an opaque 500.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
