package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/mfagate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), tag("outer"), tag("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestRecover(t *testing.T) {
	h := httpx.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "server_error")
	require.NotContains(t, rec.Body.String(), "boom")
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]int{"n": 1})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		SessionID string `json:"sessionId"`
	}

	tests := []struct {
		name        string
		contentType string
		payload     string
		want        string
		wantErr     bool
	}{
		{"valid", "application/json", `{"sessionId":"abc","extra":1}`, "abc", false},
		{"charset", "application/json; charset=utf-8", `{"sessionId":"abc"}`, "abc", false},
		{"no content type", "", `{"sessionId":"abc"}`, "abc", false},
		{"empty body", "application/json", ``, "", false},
		{"not json", "application/json", `{sessionId:`, "", true},
		{"trailing data", "application/json", `{"sessionId":"a"} {}`, "", true},
		{"wrong type", "application/json", `{"sessionId":7}`, "", true},
		{"form content type", "application/x-www-form-urlencoded", `sessionId=abc`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			var got body
			err := httpx.DecodeJSON(httptest.NewRecorder(), req, &got)
			if tt.wantErr {
				require.ErrorIs(t, err, httpx.ErrBadJSON)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.SessionID)
		})
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	payload := `{"sessionId":"` + strings.Repeat("a", httpx.MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))

	var got map[string]string
	require.ErrorIs(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &got), httpx.ErrBadJSON)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteError(rec, http.StatusUnauthorized, "invalid_session", "Session is missing or expired")

	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, httpx.ErrorBody{Error: "invalid_session", ErrorDescription: "Session is missing or expired"}, body)
}
