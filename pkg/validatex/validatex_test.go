package validatex_test

import (
	"testing"

	"github.com/aussiebroadwan/mfagate/pkg/validatex"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required"`
}

type codeInput struct {
	SessionID string `json:"sessionId" validate:"required"`
	Token     string `json:"token" validate:"required,totp"`
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validatex.Validate(credentials{Username: "alice", Password: "secret1"}))
	require.NoError(t, validatex.Validate(codeInput{SessionID: "abc", Token: "012345"}))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := validatex.Validate(credentials{Username: "al"})

	var verr *validatex.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
	require.Contains(t, verr.Fields, "username")
	require.Contains(t, verr.Fields, "password")
	require.Contains(t, verr.Fields["username"], "at least 3 characters")
	require.Contains(t, verr.Fields["password"], "required")
}

func TestValidate_TOTPRule(t *testing.T) {
	for _, token := range []string{"12345", "1234567", "12a456", "      "} {
		err := validatex.Validate(codeInput{SessionID: "abc", Token: token})

		var verr *validatex.ValidationError
		require.ErrorAs(t, err, &verr, "token=%q", token)
		require.Equal(t, "token must be a 6-digit code", verr.Fields["token"])
	}
}

func TestValidationError_Error(t *testing.T) {
	require.Equal(t, "validation error", (&validatex.ValidationError{}).Error())

	err := &validatex.ValidationError{Fields: map[string]string{"token": "token is a required field"}}
	require.Equal(t, `validation error: {"token":"token is a required field"}`, err.Error())
}
