package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/mfagate/internal/auth/service"
	"github.com/aussiebroadwan/mfagate/pkg/authsdk"
	"github.com/aussiebroadwan/mfagate/pkg/httpx"
	"github.com/aussiebroadwan/mfagate/pkg/slogx"
	"github.com/aussiebroadwan/mfagate/pkg/validatex"
)

var errorTable = []struct {
	err  error
	resp *authsdk.APIError
}{
	{httpx.ErrBadJSON, authsdk.ErrInvalidRequest},
	{service.ErrUsernameTaken, authsdk.ErrUsernameTaken},
	{service.ErrWeakCredential, authsdk.ErrWeakCredential},
	{service.ErrInvalidCredentials, authsdk.ErrInvalidCredentials},
	{service.ErrInvalidSession, authsdk.ErrInvalidSession},
	{service.ErrNoPendingEnrollment, authsdk.ErrNoPendingEnrollment},
	{service.ErrInvalidCode, authsdk.ErrInvalidCode},
	{service.ErrMFANotEnabled, authsdk.ErrMFANotEnabled},
	{service.ErrUserNotFound, authsdk.ErrUserNotFound},
}

// writeServiceError maps a service error onto its wire error. Anything not
// in the table is logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validatex.ValidationError
	if errors.As(err, &verr) {
		authsdk.NewValidationError(verr.Fields).WriteError(w)
		return
	}

	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			e.resp.WriteError(w)
			return
		}
	}

	slogx.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	authsdk.ErrServerError.WriteError(w)
}
