/*
Package authsdk is a Go client for the mfagate authentication service.

The service identifies a signed-in client by an opaque session id returned
from Login. A user without MFA is fully authenticated straight away; a user
with MFA gets a pending session that VerifyLogin completes:

	client := authsdk.NewClient("http://localhost:3000")

	login, err := client.Login(ctx, "alice", "secret1")
	if err != nil {
		return err
	}
	if login.RequiresMFA {
		if _, err := client.VerifyLogin(ctx, login.SessionID, code); err != nil {
			return err
		}
	}

Enrollment is two steps on a fully authenticated session. GenerateMFA returns
a secret and QR code for the authenticator app, and VerifySetup enables MFA
once the app produces a matching code:

	enr, err := client.GenerateMFA(ctx, sessionID)
	// show enr.QRCode (base64 PNG) or enr.OTPAuthURL to the user
	_, err = client.VerifySetup(ctx, sessionID, code)

# Errors

Non-2xx responses come back as *APIError. Compare against the predefined
errors with errors.Is, which matches on the error code only:

	if errors.Is(err, authsdk.ErrInvalidCode) {
		// ask for another code
	}

Validation failures carry per-field messages in APIError.Details.
*/
package authsdk
