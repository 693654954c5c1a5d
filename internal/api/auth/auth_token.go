package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/owt-boats/app/observability/metrics"
	"github.com/FACorreiaa/owt-boats/config"
	"github.com/FACorreiaa/owt-boats/internal/types"
)

const (
	DefaultIssuer         = "owtChallenge"
	DefaultAccessTokenTTL = 36000 * time.Second
	minSecretKeyLength    = 32
)

var ErrSigningKey = errors.New("jwt signing key misconfigured")

// TokenIssuer signs and verifies HS256 access tokens. Tokens carry their own
// validity; nothing is stored server side.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer fails when the signing key is unusable, so a bad key stops
// the service at startup instead of failing requests.
func NewTokenIssuer(cfg config.JWTConfig) (*TokenIssuer, error) {
	secret := []byte(cfg.SecretKey)
	if len(secret) < minSecretKeyLength {
		return nil, fmt.Errorf("%w: secret must be at least %d bytes, got %d", ErrSigningKey, minSecretKeyLength, len(secret))
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	ti := &TokenIssuer{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
	// Sign once so a key the library rejects is caught here too.
	if _, err := ti.sign(types.Principal{Name: "startup-check"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningKey, err)
	}
	return ti, nil
}

// WithClock replaces the time source, for tests.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

func (t *TokenIssuer) Issuer() string { return t.issuer }

func (t *TokenIssuer) sign(p types.Principal) (string, error) {
	now := t.now()
	claims := types.Claims{
		Scope: strings.Join(p.Roles, ","),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   p.Name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Issue mints a token for an authenticated principal. An empty role set
// yields an empty scope.
func (t *TokenIssuer) Issue(ctx context.Context, p types.Principal) (types.TokenResponse, error) {
	ctx, span := otel.Tracer("TokenIssuer").Start(ctx, "Issue")
	defer span.End()
	span.SetAttributes(attribute.String("principal", p.Name), attribute.Int("roles.count", len(p.Roles)))

	signed, err := t.sign(p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to sign token")
		return types.TokenResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}
	metrics.Get().TokensIssuedTotal.Add(ctx, 1)
	span.SetStatus(codes.Ok, "Token issued")
	return types.TokenResponse{Token: signed}, nil
}

// Parse verifies signature, issuer and expiry and returns the claims.
// Every failure wraps types.ErrUnauthenticated.
func (t *TokenIssuer) Parse(tokenString string) (*types.Claims, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", types.ErrUnauthenticated)
	}
	return claims, nil
}
