package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrPasswordMismatch is returned when a password does not match its hash.
	ErrPasswordMismatch = errors.New("password does not match")

	// ErrMalformedHash is returned when an encoded hash cannot be parsed.
	ErrMalformedHash = errors.New("invalid hash format")
)

type argonParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

// HashPassword derives a PHC-format Argon2id hash with a random salt. The
// pepper is appended to the password before hashing.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to read salt: %w", err)
	}

	p := argonParams{memory: memory, iterations: iterations, parallelism: parallelism}
	key := p.derive(password, salt, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		p.memory,
		p.iterations,
		p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword checks password against a PHC-format Argon2id hash using the
// parameters recorded in the hash. It returns ErrPasswordMismatch on a wrong
// password and an error wrapping ErrMalformedHash on an unparsable hash.
func VerifyPassword(password, encodedHash string) error {
	p, salt, expected, err := decodeHash(encodedHash)
	if err != nil {
		return err
	}

	computed := p.derive(password, salt, uint32(len(expected))) // #nosec G115 - bounded by decodeHash
	if subtle.ConstantTimeCompare(computed, expected) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

var (
	dummyOnce sync.Once
	dummyHash string
)

func prepareDummyHash() {
	dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		dummyHash, _ = HashPassword(base64.RawStdEncoding.EncodeToString(buf))
	})
}

// BurnPasswordCheck runs a full verification against a throwaway hash so a
// lookup miss costs the same as a wrong password. It always returns
// ErrPasswordMismatch. LoadPepper builds the throwaway hash up front; without
// it the first call pays for building it.
func BurnPasswordCheck(password string) error {
	prepareDummyHash()
	if dummyHash != "" {
		_ = VerifyPassword(password, dummyHash)
	}
	return ErrPasswordMismatch
}

func (p argonParams) derive(password string, salt []byte, length uint32) []byte {
	return argon2.IDKey([]byte(password+GetPepper()), salt, p.iterations, p.memory, p.parallelism, length)
}

// decodeHash parses $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func decodeHash(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, fmt.Errorf("%w: expected 6 parts", ErrMalformedHash)
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("%w: not argon2id", ErrMalformedHash)
	}
	if parts[2] != "v=19" {
		return p, nil, nil, fmt.Errorf("%w: wrong version", ErrMalformedHash)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("%w: failed to parse parameters: %w", ErrMalformedHash, err)
	}
	if p.memory == 0 || p.iterations == 0 || p.parallelism == 0 {
		return p, nil, nil, fmt.Errorf("%w: zero parameter", ErrMalformedHash)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: failed to decode salt: %w", ErrMalformedHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: failed to decode hash: %w", ErrMalformedHash, err)
	}
	if len(key) == 0 || len(key) > 1024 {
		return p, nil, nil, fmt.Errorf("%w: bad key length", ErrMalformedHash)
	}

	return p, salt, key, nil
}
