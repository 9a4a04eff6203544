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

// AuthService drives a session through the login sequence: password first,
// then a TOTP code when the user has MFA enabled.
type AuthService struct {
	Store       store.Store
	Credentials *CredentialService
	Sessions    *SessionService
	Engine      *otpx.Engine
	Clock       Clock
}

// Login checks the password and opens a session. The session is fully
// authenticated only when the user has no MFA; otherwise it waits for
// VerifyLogin.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Credentials.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.Info("login rejected")
		}
		return domain.LoginResult{}, err
	}

	requiresMFA := user.HasMFA()
	sess, err := s.Sessions.Create(ctx, user.ID, !requiresMFA)
	if err != nil {
		return domain.LoginResult{}, err
	}

	log.Info("login accepted",
		"user_id", user.ID,
		slogx.Session(sess.ID),
		"from", domain.StatePasswordVerified.String(),
		"to", sess.State().String(),
	)

	return domain.LoginResult{
		Session:     sess,
		User:        user,
		RequiresMFA: requiresMFA,
	}, nil
}

// VerifyLogin completes the second factor for a pending session. Codes are
// accepted up to LoginWindow steps either side of now. Calling it on an
// already authenticated session re-checks the code and changes nothing else.
func (s *AuthService) VerifyLogin(ctx context.Context, sessionID, code string) (domain.User, error) {
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

		user, err = tx.Users().GetUserByID(ctx, sess.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMFANotEnabled
			}
			return fmt.Errorf("failed to load user: %w", err)
		}
		if !user.HasMFA() {
			return ErrMFANotEnabled
		}

		if !s.Engine.Verify(*user.MFASecret, code, s.Clock.now(), otpx.LoginWindow) {
			return ErrInvalidCode
		}

		if sess.MFAVerified {
			return nil
		}
		sess.MFAVerified = true
		if err := tx.Sessions().UpdateSession(ctx, sess); err != nil {
			return fmt.Errorf("failed to mark session verified: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			log.Info("login code rejected")
		}
		return domain.User{}, err
	}

	log.Info("login second factor accepted",
		"user_id", user.ID,
		"from", domain.StateMFAPending.String(),
		"to", domain.StateAuthenticated.String(),
	)
	return user, nil
}

// Status reports whether sessionID is fully signed in. It never fails: an
// unknown, expired or unreadable session is simply not authenticated.
func (s *AuthService) Status(ctx context.Context, sessionID string) domain.Status {
	anonymous := domain.Status{State: domain.StateAnonymous}

	sess, err := s.Sessions.Active(ctx, s.Store, sessionID)
	if err != nil {
		if !errors.Is(err, ErrInvalidSession) {
			slogx.FromContext(ctx).Error("failed to load session for status", slogx.Session(sessionID), "error", err)
		}
		return anonymous
	}

	status := domain.Status{
		Authenticated: sess.MFAVerified,
		State:         sess.State(),
	}

	user, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	switch {
	case err == nil:
		status.User = &user
	case !errors.Is(err, store.ErrNotFound):
		slogx.FromContext(ctx).Error("failed to load user for status", "user_id", sess.UserID, "error", err)
	}
	return status
}

// Logout ends the session. Unknown or empty ids succeed.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.Sessions.Destroy(ctx, sessionID); err != nil {
		return err
	}
	if sessionID != "" {
		slogx.FromContext(ctx).Info("logout", slogx.Session(sessionID))
	}
	return nil
}

// Health counts users and live sessions.
func (s *AuthService) Health(ctx context.Context) (domain.Health, error) {
	now := s.Clock.now()

	users, err := s.Store.Users().CountUsers(ctx)
	if err != nil {
		return domain.Health{}, fmt.Errorf("failed to count users: %w", err)
	}
	sessions, err := s.Store.Sessions().CountSessions(ctx, now)
	if err != nil {
		return domain.Health{}, fmt.Errorf("failed to count sessions: %w", err)
	}

	return domain.Health{Timestamp: now, UsersCount: users, SessionsCount: sessions}, nil
}
