package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/mfagate/internal/auth/domain"
	"github.com/aussiebroadwan/mfagate/internal/auth/store"
	"github.com/aussiebroadwan/mfagate/pkg/otpx"
	"github.com/aussiebroadwan/mfagate/pkg/slogx"
	"github.com/aussiebroadwan/mfagate/pkg/validatex"
)

// QRRenderer turns a provisioning URI into a PNG image.
type QRRenderer interface {
	PNG(content string) ([]byte, error)
}

type codeInput struct {
	Token string `json:"token" validate:"required,totp"`
}

// EnrollmentService binds TOTP secrets to users. A generated secret lives on
// the session that asked for it until a code proves the authenticator holds
// it; only then is it copied onto the user.
type EnrollmentService struct {
	Store       store.Store
	Sessions    *SessionService
	Credentials *CredentialService
	Engine      *otpx.Engine
	QR          QRRenderer
	Issuer      string
	Clock       Clock
}

// GenerateSecret starts (or restarts) enrollment for the signed-in user of
// sessionID. Any earlier unconfirmed secret on the session is replaced and
// the user record is not touched.
func (s *EnrollmentService) GenerateSecret(ctx context.Context, sessionID string) (domain.Enrollment, error) {
	log := slogx.FromContext(ctx).With(slogx.Session(sessionID))

	secret, err := s.Engine.NewSecret()
	if err != nil {
		return domain.Enrollment{}, err
	}

	var uri string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		sess, err := s.Sessions.Active(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !sess.MFAVerified {
			return ErrInvalidSession
		}

		user, err := tx.Users().GetUserByID(ctx, sess.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidSession
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		uri, err = s.Engine.ProvisioningURI(secret, user.Username, s.Issuer)
		if err != nil {
			return err
		}

		sess.PendingEnrollmentSecret = &secret
		if err := tx.Sessions().UpdateSession(ctx, sess); err != nil {
			return fmt.Errorf("failed to store pending secret: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Enrollment{}, err
	}

	enrollment := domain.Enrollment{Secret: secret, ProvisioningURI: uri}
	if s.QR != nil {
		png, err := s.QR.PNG(uri)
		if err != nil {
			return domain.Enrollment{}, fmt.Errorf("failed to render QR code: %w", err)
		}
		enrollment.QRCodePNG = png
	}

	log.Info("mfa enrollment started")
	return enrollment, nil
}

// ConfirmEnrollment checks code against the session's pending secret. On a
// match the user gets MFA enabled with that secret and the pending secret is
// consumed, atomically. The user's other sessions drop back to MFA pending.
// A wrong code leaves everything as it was so the caller can retry.
func (s *EnrollmentService) ConfirmEnrollment(ctx context.Context, sessionID, code string) (domain.User, error) {
	log := slogx.FromContext(ctx).With(slogx.Session(sessionID))

	if err := validatex.Validate(codeInput{Token: code}); err != nil {
		return domain.User{}, err
	}

	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		sess, err := s.Sessions.Active(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !sess.MFAVerified {
			return ErrInvalidSession
		}
		if sess.PendingEnrollmentSecret == nil {
			return ErrNoPendingEnrollment
		}

		secret := *sess.PendingEnrollmentSecret
		if !s.Engine.Verify(secret, code, s.Clock.now(), otpx.SetupWindow) {
			return ErrInvalidCode
		}

		if err := s.Credentials.SetMFA(ctx, tx, sess.UserID, true, secret); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return ErrInvalidSession
			}
			return err
		}

		sess.PendingEnrollmentSecret = nil
		sess.MFAVerified = true
		if err := tx.Sessions().UpdateSession(ctx, sess); err != nil {
			return fmt.Errorf("failed to clear pending secret: %w", err)
		}

		// Every other session of the user must now present a code for this secret.
		if err := tx.Sessions().ResetVerification(ctx, sess.UserID, sess.ID); err != nil {
			return fmt.Errorf("failed to reset other sessions: %w", err)
		}

		user, err = tx.Users().GetUserByID(ctx, sess.UserID)
		if err != nil {
			return fmt.Errorf("failed to reload user: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			log.Info("mfa enrollment code rejected")
		}
		return domain.User{}, err
	}

	log.Info("mfa enabled", "user_id", user.ID)
	return user, nil
}

// ResetMFA disables MFA for the signed-in user of sessionID and drops every
// pending enrollment on that user's sessions. Existing sessions stay signed
// in.
func (s *EnrollmentService) ResetMFA(ctx context.Context, sessionID string) (domain.User, error) {
	log := slogx.FromContext(ctx).With(slogx.Session(sessionID))

	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		sess, err := s.Sessions.Active(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if !sess.MFAVerified {
			return ErrInvalidSession
		}

		if err := s.Credentials.SetMFA(ctx, tx, sess.UserID, false, ""); err != nil {
			return err
		}
		if err := tx.Sessions().ClearPendingEnrollments(ctx, sess.UserID); err != nil {
			return fmt.Errorf("failed to clear pending enrollments: %w", err)
		}

		user, err = tx.Users().GetUserByID(ctx, sess.UserID)
		if err != nil {
			return fmt.Errorf("failed to reload user: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	log.Info("mfa reset", "user_id", user.ID)
	return user, nil
}
