package slogx

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/mfagate/pkg/cryptox"
)

type ctxKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// Session logs a short fingerprint of a session id under the "session" key.
func Session(id string) slog.Attr {
	if id == "" {
		return slog.String("session", "")
	}
	return slog.String("session", cryptox.FingerprintToken(id)[:12])
}
