package http

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/aussiebroadwan/mfagate/internal/auth/service"
	"github.com/aussiebroadwan/mfagate/pkg/authsdk"
	"github.com/aussiebroadwan/mfagate/pkg/httpx"
	"github.com/aussiebroadwan/mfagate/pkg/otpx"
)

// MFAHandler handles all MFA-related endpoints.
type MFAHandler struct {
	Enrollment *service.EnrollmentService
	Auth       *service.AuthService
	Engine     *otpx.Engine
	Clock      service.Clock
}

func (h *MFAHandler) now() time.Time {
	if h.Clock == nil {
		return time.Now()
	}
	return h.Clock()
}

// HandleGenerate handles POST /api/mfa/generate
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a secret held on the session until /api/mfa/verify-setup confirms it. Calling again replaces the pending secret.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SessionRequest			true	"Fully authenticated session"
//	@Success		200		{object}	authsdk.GenerateMFAResponse		"Secret, base64 PNG QR code and otpauth URL"
//	@Failure		401		{object}	authsdk.ErrorResponse			"invalid_session"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/api/mfa/generate [post].
func (h *MFAHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SessionRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	enr, err := h.Enrollment.GenerateSecret(r.Context(), req.SessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.GenerateMFAResponse{
		Secret:     enr.Secret,
		QRCode:     base64.StdEncoding.EncodeToString(enr.QRCodePNG),
		QRCodeType: "png",
		OTPAuthURL: enr.ProvisioningURI,
	})
}

// HandleVerifySetup handles POST /api/mfa/verify-setup
//
//	@Summary		Confirm TOTP enrollment
//	@Description	Checks a code against the pending secret (one step of drift either way) and enables MFA. A wrong code keeps the pending secret for another try.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CodeRequest				true	"Session and 6-digit code"
//	@Success		200		{object}	authsdk.MFAResultResponse
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Malformed code"
//	@Failure		400		{object}	authsdk.ErrorResponse			"invalid_code"
//	@Failure		401		{object}	authsdk.ErrorResponse			"invalid_session or no_pending_enrollment"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Rate limit exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/api/mfa/verify-setup [post].
func (h *MFAHandler) HandleVerifySetup(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.Enrollment.ConfirmEnrollment(r.Context(), req.SessionID, req.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MFAResultResponse{
		Success: true,
		Message: "MFA enabled successfully",
		User:    toUserInfo(user),
	})
}

// HandleVerifyLogin handles POST /api/mfa/verify-login
//
//	@Summary		Complete sign-in with a TOTP code
//	@Description	Checks a code against the user's secret (two steps of drift either way) and marks the session authenticated.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CodeRequest				true	"Session and 6-digit code"
//	@Success		200		{object}	authsdk.MFAResultResponse
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Malformed code"
//	@Failure		400		{object}	authsdk.ErrorResponse			"invalid_code or mfa_not_enabled"
//	@Failure		401		{object}	authsdk.ErrorResponse			"invalid_session"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Rate limit exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/api/mfa/verify-login [post].
func (h *MFAHandler) HandleVerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.Auth.VerifyLogin(r.Context(), req.SessionID, req.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MFAResultResponse{
		Success: true,
		User:    toUserInfo(user),
	})
}

// HandleReset handles POST /api/mfa/reset
//
//	@Summary		Disable MFA
//	@Description	Turns MFA off for the session's user and drops pending enrollments on all of their sessions. Nobody is signed out.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SessionRequest	true	"Fully authenticated session"
//	@Success		200		{object}	authsdk.MFAResultResponse
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_session"
//	@Failure		404		{object}	authsdk.ErrorResponse	"user_not_found"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/api/mfa/reset [post].
func (h *MFAHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SessionRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.Enrollment.ResetMFA(r.Context(), req.SessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MFAResultResponse{
		Success: true,
		Message: "MFA disabled",
		User:    toUserInfo(user),
	})
}

// HandleRemainingTime handles GET /api/mfa/remaining-time
//
//	@Summary		Seconds left on the current code
//	@Tags			MFA
//	@Produce		json
//	@Success		200	{object}	authsdk.RemainingTimeResponse
//	@Router			/api/mfa/remaining-time [get].
func (h *MFAHandler) HandleRemainingTime(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.RemainingTimeResponse{
		RemainingTime: h.Engine.RemainingSeconds(h.now()),
		Period:        int(h.Engine.Period),
	})
}
