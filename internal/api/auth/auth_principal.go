package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/owt-boats/config"
	"github.com/FACorreiaa/owt-boats/internal/types"
)

var _ PrincipalStore = (*ConfigPrincipalStore)(nil)

// PrincipalStore verifies credentials and yields the principal they belong to.
type PrincipalStore interface {
	// Authenticate returns types.ErrUnauthenticated for unknown users and
	// wrong passwords alike.
	Authenticate(ctx context.Context, name, password string) (types.Principal, error)
}

type storedUser struct {
	hash  []byte
	roles []string
}

// ConfigPrincipalStore checks credentials against bcrypt hashes from
// configuration. Successful checks are cached for a short TTL so repeated
// token requests do not pay the bcrypt cost each time.
type ConfigPrincipalStore struct {
	logger   *slog.Logger
	users    map[string]storedUser
	verified *cache.Cache
	// compared against for unknown users to keep timing uniform
	dummyHash []byte
}

func NewConfigPrincipalStore(users []config.UserConfig, ttl time.Duration, logger *slog.Logger) (*ConfigPrincipalStore, error) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare credential store: %w", err)
	}

	s := &ConfigPrincipalStore{
		logger:    logger,
		users:     make(map[string]storedUser, len(users)),
		verified:  cache.New(ttl, 2*ttl),
		dummyHash: dummy,
	}
	for _, u := range users {
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return nil, fmt.Errorf("user %q: invalid bcrypt hash: %w", u.Name, err)
		}
		roles := make([]string, len(u.Roles))
		copy(roles, u.Roles)
		s.users[u.Name] = storedUser{hash: []byte(u.PasswordHash), roles: roles}
	}
	return s, nil
}

func cacheKey(name, password string) string {
	sum := sha256.Sum256([]byte(name + "\x00" + password))
	return hex.EncodeToString(sum[:])
}

func (s *ConfigPrincipalStore) Authenticate(ctx context.Context, name, password string) (types.Principal, error) {
	key := cacheKey(name, password)
	if p, ok := s.verified.Get(key); ok {
		return p.(types.Principal), nil
	}

	u, ok := s.users[name]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.logger.DebugContext(ctx, "Unknown user", slog.String("user", name))
		return types.Principal{}, types.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		s.logger.DebugContext(ctx, "Password mismatch", slog.String("user", name))
		return types.Principal{}, types.ErrUnauthenticated
	}

	p := types.Principal{Name: name, Roles: u.roles}
	s.verified.SetDefault(key, p)
	return p, nil
}
