package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas-erp/internal/shared"
)

func TestRespondErrorMapsSharedCategories(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		title  string
	}{
		{"not found", fmt.Errorf("products: %w", shared.ErrNotFound), 404, "Not Found"},
		{"duplicate", fmt.Errorf("products: sku exists: %w", shared.ErrDuplicate), 409, "Duplicate"},
		{"validation", fmt.Errorf("inventory: quantity must be positive: %w", shared.ErrValidation), 400, "Validation Failed"},
		{"conflict", fmt.Errorf("ledger: entry already posted: %w", shared.ErrConflict), 409, "Conflict"},
		{"unmapped", errors.New("connection refused"), 500, "Internal Error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)

			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

			var problem ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			require.Equal(t, tc.title, problem.Title)
			require.Equal(t, tc.status, problem.Status)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("dial tcp 10.0.0.1:5432: i/o timeout"))

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Empty(t, problem.Detail, "internal errors must not leak detail")
}
