// FILE: lixenwraith/config/secret.go
package config

import (
	"context"

	"go.uber.org/zap"
)

// SecretStore looks up a secret by namespace and key.
// found is false when the store has no entry; err is reserved for backend failures.
type SecretStore interface {
	Lookup(ctx context.Context, namespace, key string) (value string, found bool, err error)
}

// SecretStoreFunc adapts a function to SecretStore
type SecretStoreFunc func(ctx context.Context, namespace, key string) (string, bool, error)

// Lookup implements SecretStore
func (f SecretStoreFunc) Lookup(ctx context.Context, namespace, key string) (string, bool, error) {
	return f(ctx, namespace, key)
}

// MapSecretStore is an in-memory store keyed by namespace, then key
type MapSecretStore map[string]map[string]string

// Lookup implements SecretStore
func (m MapSecretStore) Lookup(_ context.Context, namespace, key string) (string, bool, error) {
	v, ok := m[namespace][key]
	return v, ok, nil
}

// SecretParser queries a secret store for every option not marked NoSecret,
// using the option name as the key. A nil store, a missing entry or a failing
// backend all leave the option out; resolution of other sources never breaks.
type SecretParser struct {
	Schema    *Schema
	Store     SecretStore
	Namespace string
	Logger    *zap.Logger
}

// NewSecretParser creates a parser; store may be nil
func NewSecretParser(schema *Schema, store SecretStore, namespace string) *SecretParser {
	return &SecretParser{
		Schema:    schema,
		Store:     store,
		Namespace: namespace,
		Logger:    zap.NewNop(),
	}
}

// Source implements SourceParser
func (p *SecretParser) Source() Source { return SourceSecret }

// Parse returns the coerced secrets found. Only coercion failures are errors.
func (p *SecretParser) Parse(ctx context.Context) (Partial, error) {
	result := make(Partial)
	if p.Store == nil {
		return result, nil
	}

	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, opt := range p.Schema.options {
		if opt.NoSecret {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		secret, found, err := p.Store.Lookup(ctx, p.Namespace, opt.Name)
		if err != nil {
			logger.Warn("Secret lookup failed, continuing without it",
				zap.String("namespace", p.Namespace), zap.String("option", opt.Name), zap.Error(err))
			continue
		}
		if !found || secret == "" {
			continue
		}
		if len(secret) > MaxValueSize {
			logger.Warn("Secret exceeds maximum size, ignoring",
				zap.String("namespace", p.Namespace), zap.String("option", opt.Name))
			continue
		}

		v, err := opt.coerceFromText(secret, SourceSecret)
		if err != nil {
			return nil, err
		}
		result[opt.Key()] = v
	}

	return result, nil
}
