package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lemon/task-api/internal/core/domain"
	"github.com/lemon/task-api/internal/core/ports"
)

// DefaultTokenTTL is the lifetime of issued tokens when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// MinSecretBytes is the minimum HMAC key length accepted for HS256.
const MinSecretBytes = 32

var ErrWeakSecret = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretBytes)

// signingMethod is pinned; the token header never selects the algorithm.
var signingMethod = jwt.SigningMethodHS256

// JWTService implements ports.TokenService with HS256-signed JWTs whose
// subject is the account username. It is immutable after construction and
// safe for concurrent use.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a JWTService.
type TokenOption func(*JWTService)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) TokenOption {
	return func(s *JWTService) { s.now = now }
}

// NewJWTService creates a token service. A non-positive ttl selects
// DefaultTokenTTL.
func NewJWTService(secret string, ttl time.Duration, opts ...TokenOption) (*JWTService, error) {
	if len(secret) < MinSecretBytes {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	key := make([]byte, len(secret))
	copy(key, secret)

	s := &JWTService{secret: key, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the configured token lifetime.
func (s *JWTService) TTL() time.Duration { return s.ttl }

// Issue signs {sub, iat=now, exp=now+ttl}.
func (s *JWTService) Issue(subject string) (ports.IssuedToken, error) {
	if subject == "" {
		return ports.IssuedToken{}, errors.New("jwt: empty subject")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return ports.IssuedToken{}, fmt.Errorf("jwt: sign token: %w", err)
	}

	return ports.IssuedToken{
		Token: signed,
		Claims: ports.TokenClaims{
			Subject:   claims.Subject,
			IssuedAt:  claims.IssuedAt.Time,
			ExpiresAt: claims.ExpiresAt.Time,
		},
	}, nil
}

// Validate verifies the signature with the pinned algorithm and requires
// now < exp. It returns domain.ErrTokenExpired for expired tokens and
// domain.ErrTokenInvalid for everything else.
func (s *JWTService) Validate(token string) (ports.TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ports.TokenClaims{}, domain.ErrTokenExpired
		}
		return ports.TokenClaims{}, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return ports.TokenClaims{}, domain.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return ports.TokenClaims{}, fmt.Errorf("%w: missing subject", domain.ErrTokenInvalid)
	}

	out := ports.TokenClaims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

func (s *JWTService) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != signingMethod.Alg() {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return s.secret, nil
}
