// FILE: lixenwraith/config/keyringstore/keyring_test.go
package keyringstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/lixenwraith/config"
)

func TestStore(t *testing.T) {
	keyring.MockInit()
	store := New()
	ctx := context.Background()

	t.Run("MissingEntry", func(t *testing.T) {
		v, found, err := store.Lookup(ctx, "app", "absent")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, v)
	})

	t.Run("SetLookupDelete", func(t *testing.T) {
		require.NoError(t, store.Set("app", "karg", "13"))

		v, found, err := store.Lookup(ctx, "app", "karg")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "13", v)

		require.NoError(t, store.Delete("app", "karg"))
		require.NoError(t, store.Delete("app", "karg"))

		_, found, err = store.Lookup(ctx, "app", "karg")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := store.Lookup(cctx, "app", "karg")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStoreAsSecretSource(t *testing.T) {
	keyring.MockInit()
	store := New()
	require.NoError(t, store.Set("app", "karg", "13"))
	t.Cleanup(func() { _ = store.Delete("app", "karg") })

	schema := config.MustSchema(
		config.Option{Flags: []string{"--karg"}, Default: "-1", Type: config.Int},
		config.Option{Flags: []string{"--xarg"}, Default: "1", Type: config.Int},
	)
	cfg, err := config.NewBuilder().
		WithSchema(schema).
		WithArgs([]string{}).
		WithEnvLookup(config.MapLookup(nil)).
		WithSecretStore(store, "app").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "<Config karg=13, xarg=1>", cfg.String())
	src, _ := cfg.Source("karg")
	assert.Equal(t, config.SourceSecret, src)
}
