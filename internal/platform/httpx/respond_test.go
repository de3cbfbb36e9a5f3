package httpx

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeJSONWrapsErrors(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader("{not json"))

	var target map[string]any
	err := DecodeJSON(req, &target)
	require.Error(t, err)
	require.Contains(t, err.Error(), "httpx: decode body")
}

func TestDecodeJSONCapsBodySize(t *testing.T) {
	oversized := `{"notes":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(oversized))

	var target map[string]any
	require.Error(t, DecodeJSON(req, &target), "body beyond the cap must not decode")
}

func TestProblemSetsMediaType(t *testing.T) {
	rec := httptest.NewRecorder()
	Problem(rec, 404, "Not Found", "no such account")

	require.Equal(t, 404, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), `"no such account"`)
}
