// Package otpx implements RFC 6238 time-based one-time passwords on top of
// github.com/pquerna/otp, with the drift windows and constant-time matching
// used by the login and enrollment flows.
package otpx

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"
)

const (
	// DefaultPeriod is the length of one time step in seconds.
	DefaultPeriod = 30

	// SecretSize is the number of random bytes in a generated secret (160 bits).
	SecretSize = 20

	// SetupWindow is the drift tolerance, in steps, when confirming enrollment.
	SetupWindow = 1

	// LoginWindow is the drift tolerance, in steps, for the login second factor.
	LoginWindow = 2
)

// ErrInvalidSecret reports a secret that is not valid unpadded base32.
var ErrInvalidSecret = errors.New("otpx: invalid base32 secret")

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Engine computes and checks TOTP codes. The zero value is not usable; use New.
type Engine struct {
	Period    uint
	Digits    otp.Digits
	Algorithm otp.Algorithm
}

// New returns an Engine with the authenticator-app defaults: SHA-1, six
// digits, 30 second steps.
func New() *Engine {
	return &Engine{
		Period:    DefaultPeriod,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// NewSecret returns a fresh random secret encoded as unpadded base32.
func (e *Engine) NewSecret() (string, error) {
	buf := make([]byte, SecretSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random secret: %w", err)
	}
	return b32.EncodeToString(buf), nil
}

// Counter returns the time step containing t.
func (e *Engine) Counter(t time.Time) int64 {
	p := int64(e.Period)
	u := t.Unix()
	c := u / p
	if u%p != 0 && u < 0 {
		c--
	}
	return c
}

// GenerateCode returns the code for the given step.
func (e *Engine) GenerateCode(secret string, counter uint64) (string, error) {
	secret, err := normalizeSecret(secret)
	if err != nil {
		return "", err
	}

	code, err := hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
		Digits:    e.Digits,
		Algorithm: e.Algorithm,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return code, nil
}

// CodeAt returns the code valid at time t.
func (e *Engine) CodeAt(secret string, t time.Time) (string, error) {
	c := e.Counter(t)
	if c < 0 {
		return "", fmt.Errorf("otpx: time %s precedes the epoch", t)
	}
	return e.GenerateCode(secret, uint64(c))
}

// Verify reports whether code matches any step within window steps either
// side of now. Every candidate is compared so timing does not leak which
// step matched. Malformed codes and undecodable secrets never match.
func (e *Engine) Verify(secret, code string, now time.Time, window uint) bool {
	if !e.wellFormed(code) {
		return false
	}

	center := e.Counter(now)
	matched := 0
	for k := -int64(window); k <= int64(window); k++ {
		step := center + k
		if step < 0 {
			continue
		}

		expected, err := e.GenerateCode(secret, uint64(step))
		if err != nil {
			return false
		}
		matched |= subtle.ConstantTimeCompare([]byte(expected), []byte(code))
	}

	return matched == 1
}

// RemainingSeconds returns how long the code for now stays current, folded
// into [0, Period).
func (e *Engine) RemainingSeconds(now time.Time) int {
	p := int64(e.Period)
	r := now.Unix() % p
	if r < 0 {
		r += p
	}
	return int((p - r) % p)
}

// ProvisioningURI builds the otpauth://totp/ URI that authenticator apps
// import, labelled with issuer and account.
func (e *Engine) ProvisioningURI(secret, account, issuer string) (string, error) {
	secret, err := normalizeSecret(secret)
	if err != nil {
		return "", err
	}
	raw, err := b32.DecodeString(secret)
	if err != nil {
		return "", ErrInvalidSecret
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      e.Period,
		Secret:      raw,
		Digits:      e.Digits,
		Algorithm:   e.Algorithm,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build provisioning uri: %w", err)
	}
	return key.URL(), nil
}

func (e *Engine) wellFormed(code string) bool {
	if len(code) != e.Digits.Length() {
		return false
	}
	for i := range len(code) {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

func normalizeSecret(secret string) (string, error) {
	s := strings.ToUpper(strings.TrimRight(strings.TrimSpace(secret), "="))
	if s == "" {
		return "", ErrInvalidSecret
	}
	if _, err := b32.DecodeString(s); err != nil {
		return "", ErrInvalidSecret
	}
	return s, nil
}
