package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/mfagate/internal/auth/domain"
	"github.com/aussiebroadwan/mfagate/internal/auth/store"
	"github.com/aussiebroadwan/mfagate/pkg/cryptox"
	"github.com/aussiebroadwan/mfagate/pkg/idx"
	"github.com/aussiebroadwan/mfagate/pkg/slogx"
	"github.com/aussiebroadwan/mfagate/pkg/validatex"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

type registerInput struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,max=1024"`
}

type loginInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=1024"`
}

// CredentialService owns usernames and password hashes.
type CredentialService struct {
	Store store.Store
	Clock Clock
}

// Register creates a user with MFA disabled. The username is trimmed and
// then matched case-sensitively.
func (s *CredentialService) Register(ctx context.Context, username, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	in := registerInput{Username: strings.TrimSpace(username), Password: password}
	if err := validatex.Validate(in); err != nil {
		return domain.User{}, err
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return domain.User{}, ErrWeakCredential
	}

	// Hash outside the transaction; argon2 is deliberately slow.
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.Clock.now()
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     in.Username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().GetUserByUsername(ctx, in.Username)
		switch {
		case err == nil:
			return ErrUsernameTaken
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("failed to look up username: %w", err)
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	log.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords both return ErrInvalidCredentials after a full hash check.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	in := loginInput{Username: strings.TrimSpace(username), Password: password}
	if err := validatex.Validate(in); err != nil {
		return domain.User{}, err
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.BurnPasswordCheck(in.Password)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := cryptox.VerifyPassword(in.Password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Error("stored password hash is unreadable", "user_id", user.ID, "error", err)
		}
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// SetMFA turns MFA on with secret, or off when enabled is false, inside the
// caller's transaction.
func (s *CredentialService) SetMFA(ctx context.Context, tx store.Tx, userID string, enabled bool, secret string) error {
	var sp *string
	if enabled {
		if secret == "" {
			return store.ErrInvalidMFAState
		}
		sp = &secret
	}

	if err := tx.Users().SetMFA(ctx, userID, enabled, sp, s.Clock.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update MFA state: %w", err)
	}
	return nil
}
