package authsdk

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPIError_IsMatchesCode(t *testing.T) {
	t.Parallel()

	parsed := &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeInvalidCode, Description: "different text"}
	require.ErrorIs(t, parsed, ErrInvalidCode)
	require.False(t, errors.Is(parsed, ErrInvalidSession))
	require.False(t, errors.Is(parsed, errors.New(ErrorCodeInvalidCode)))
}

func TestAPIError_WriteErrorRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("plain error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ErrInvalidSession.WriteError(rec)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"error":"invalid_session","error_description":"invalid session"}`, rec.Body.String())

		err := parseErrorResponse(rec.Result(), rec.Body.Bytes())
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("validation error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewValidationError(map[string]string{"token": "token must be a 6-digit code"}).WriteError(rec)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{
			"code": "validation_error",
			"message": "request validation failed",
			"details": {"token": "token must be a 6-digit code"}
		}`, rec.Body.String())

		err := parseErrorResponse(rec.Result(), rec.Body.Bytes())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, ErrorCodeValidation, apiErr.Code)
		require.Equal(t, "token must be a 6-digit code", apiErr.Details["token"])
	})
}

func TestParseErrorResponse_Fallback(t *testing.T) {
	t.Parallel()

	resp := &http.Response{StatusCode: http.StatusBadGateway}
	err := parseErrorResponse(resp, []byte("<html>bad gateway</html>"))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	t.Parallel()

	c := NewClient("http://localhost:3000/")
	require.Equal(t, "http://localhost:3000/api/login", c.url("/api/login"))
}
