package klog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/credforge/credkit/identifier"
)

type ContextExtractor func(context.Context) []slog.Attr

func ContextValueExtractor(key any, attrKey string) ContextExtractor {
	if attrKey == "" {
		attrKey = fmt.Sprint(key)
	}
	return func(ctx context.Context) []slog.Attr {
		if ctx == nil {
			return nil
		}
		val := ctx.Value(key)
		if val == nil {
			return nil
		}
		return []slog.Attr{slog.Any(attrKey, val)}
	}
}

type credentialIDKey struct{}

// WithCredentialID stamps the credential being operated on into the context
// so that CredentialIDExtractor can attach it to every log line.
func WithCredentialID(ctx context.Context, id identifier.Identifier) context.Context {
	return context.WithValue(ctx, credentialIDKey{}, id)
}

// CredentialIDExtractor emits a credential_id attribute when the context
// carries one.
func CredentialIDExtractor() ContextExtractor {
	return func(ctx context.Context) []slog.Attr {
		if ctx == nil {
			return nil
		}
		id, ok := ctx.Value(credentialIDKey{}).(identifier.Identifier)
		if !ok {
			return nil
		}
		return []slog.Attr{slog.String("credential_id", id.String())}
	}
}

// secretKeys are attribute keys whose values must never reach a sink.
var secretKeys = map[string]struct{}{
	"password": {},
	"key":      {},
	"secret":   {},
	"dsn":      {},
	"salt":     {},
	"hash":     {},
}

// RedactSecrets is a slog ReplaceAttr function that blanks the values of
// credential-bearing attributes. Wire it through slog.HandlerOptions.
func RedactSecrets(groups []string, attr slog.Attr) slog.Attr {
	if _, ok := secretKeys[attr.Key]; ok {
		attr.Value = slog.StringValue("[REDACTED]")
	}
	return attr
}
