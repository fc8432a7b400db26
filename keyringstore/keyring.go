// FILE: lixenwraith/config/keyringstore/keyring.go

// Package keyringstore serves secrets from the operating system keyring
// (macOS Keychain, Secret Service, Windows Credential Manager).
// The namespace is the keyring service name and the option name is the user.
package keyringstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// Store implements config.SecretStore on top of go-keyring
type Store struct{}

// New returns a keyring-backed store
func New() *Store {
	return &Store{}
}

// Lookup returns the secret stored for namespace/key
func (s *Store) Lookup(ctx context.Context, namespace, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	secret, err := keyring.Get(namespace, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("keyring lookup %s/%s: %w", namespace, key, err)
	}
	return secret, true, nil
}

// Set stores a secret, mainly to seed the keyring for a program's first run
func (s *Store) Set(namespace, key, secret string) error {
	if err := keyring.Set(namespace, key, secret); err != nil {
		return fmt.Errorf("keyring store %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes a secret; a missing entry is not an error
func (s *Store) Delete(namespace, key string) error {
	if err := keyring.Delete(namespace, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %s/%s: %w", namespace, key, err)
	}
	return nil
}
