package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/owt-boats/config"
	"github.com/FACorreiaa/owt-boats/internal/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestPrincipalStore(t *testing.T) *ConfigPrincipalStore {
	t.Helper()
	store, err := NewConfigPrincipalStore([]config.UserConfig{
		{Name: "user", PasswordHash: hash(t, "password"), Roles: []string{"USER"}},
		{Name: "guest", PasswordHash: hash(t, "guest"), Roles: []string{"GUEST"}},
	}, time.Minute, discardLogger())
	require.NoError(t, err)
	return store
}

func TestConfigPrincipalStore(t *testing.T) {
	store := newTestPrincipalStore(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		p, err := store.Authenticate(ctx, "user", "password")
		require.NoError(t, err)
		assert.Equal(t, types.Principal{Name: "user", Roles: []string{"USER"}}, p)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := store.Authenticate(ctx, "user", "nope")
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := store.Authenticate(ctx, "ghost", "password")
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
	})

	t.Run("CachesVerifiedCredentials", func(t *testing.T) {
		_, err := store.Authenticate(ctx, "guest", "guest")
		require.NoError(t, err)
		_, cached := store.verified.Get(cacheKey("guest", "guest"))
		assert.True(t, cached)

		_, cached = store.verified.Get(cacheKey("guest", "wrong"))
		assert.False(t, cached)
	})
}

func TestNewConfigPrincipalStoreRejectsBadHash(t *testing.T) {
	_, err := NewConfigPrincipalStore([]config.UserConfig{
		{Name: "user", PasswordHash: "plaintext", Roles: []string{"USER"}},
	}, time.Minute, discardLogger())
	assert.Error(t, err)
}
