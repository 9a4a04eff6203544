package http

import (
	"net/http"

	"github.com/aussiebroadwan/mfagate/internal/auth/domain"
	"github.com/aussiebroadwan/mfagate/internal/auth/service"
	"github.com/aussiebroadwan/mfagate/pkg/authsdk"
	"github.com/aussiebroadwan/mfagate/pkg/httpx"
)

// AuthHandler serves registration and the session lifecycle.
type AuthHandler struct {
	Credentials *service.CredentialService
	Auth        *service.AuthService
}

func toUserInfo(u domain.User) *authsdk.UserInfo {
	return &authsdk.UserInfo{Username: u.Username, MFAEnabled: u.MFAEnabled}
}

// HandleRegister handles POST /api/register
//
//	@Summary		Register a user
//	@Description	Creates an account with MFA disabled. Usernames are trimmed and compared case-sensitively.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CredentialsRequest		true	"Username and password"
//	@Success		200		{object}	authsdk.RegisterResponse
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Validation failed"
//	@Failure		400		{object}	authsdk.ErrorResponse			"username_taken, weak_credential or invalid_request"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Rate limit exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/api/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CredentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.Credentials.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RegisterResponse{
		Message: "User registered successfully",
		UserID:  user.ID,
	})
}

// HandleLogin handles POST /api/login
//
//	@Summary		Sign in with a password
//	@Description	Opens a session. When requiresMFA is true the session must be completed with /api/mfa/verify-login.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CredentialsRequest		true	"Username and password"
//	@Success		200		{object}	authsdk.LoginResponse
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Validation failed"
//	@Failure		401		{object}	authsdk.ErrorResponse			"invalid_credentials"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Rate limit exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/api/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CredentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		SessionID:   res.Session.ID,
		RequiresMFA: res.RequiresMFA,
		User:        *toUserInfo(res.User),
	})
}

// HandleStatus handles GET /api/auth/status
//
//	@Summary		Session status
//	@Description	Reports whether the session is fully signed in. Unknown or expired sessions are simply not authenticated.
//	@Tags			Auth
//	@Produce		json
//	@Param			sessionId	query		string	false	"Session id"
//	@Success		200			{object}	authsdk.StatusResponse
//	@Router			/api/auth/status [get].
func (h *AuthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := h.Auth.Status(r.Context(), r.URL.Query().Get("sessionId"))

	resp := authsdk.StatusResponse{Authenticated: status.Authenticated}
	if status.User != nil {
		resp.User = toUserInfo(*status.User)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleLogout handles POST /api/logout
//
//	@Summary		Sign out
//	@Description	Deletes the session. Succeeds for unknown sessions too.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SessionRequest	true	"Session to end"
//	@Success		200		{object}	authsdk.LogoutResponse
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/api/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SessionRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.Auth.Logout(r.Context(), req.SessionID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LogoutResponse{Success: true})
}
