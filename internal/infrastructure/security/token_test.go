package security

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemon/task-api/internal/core/domain"
)

const testSecret = "test-secret-key-for-jwt-signing-0123456789"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, clock *fakeClock) *JWTService {
	t.Helper()
	svc, err := NewJWTService(testSecret, 24*time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	return svc
}

var issuedAt = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func TestJWTService_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: issuedAt}
	svc := newTestService(t, clock)

	issued, err := svc.Issue("juan")
	require.NoError(t, err)
	assert.Equal(t, "juan", issued.Claims.Subject)
	assert.Equal(t, issuedAt, issued.Claims.IssuedAt.UTC())
	assert.Equal(t, issuedAt.Add(24*time.Hour), issued.Claims.ExpiresAt.UTC())

	for _, at := range []time.Duration{0, time.Hour, 24*time.Hour - time.Second} {
		clock.t = issuedAt.Add(at)
		claims, err := svc.Validate(issued.Token)
		require.NoError(t, err, "validate at +%s", at)
		assert.Equal(t, "juan", claims.Subject)
	}
}

func TestJWTService_IssueIsDeterministicForSameInstant(t *testing.T) {
	clock := &fakeClock{t: issuedAt}
	svc := newTestService(t, clock)

	a, err := svc.Issue("juan")
	require.NoError(t, err)
	b, err := svc.Issue("juan")
	require.NoError(t, err)
	assert.Equal(t, a.Token, b.Token)

	clock.t = issuedAt.Add(time.Second)
	c, err := svc.Issue("juan")
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, c.Token)
}

func TestJWTService_Expired(t *testing.T) {
	clock := &fakeClock{t: issuedAt}
	svc := newTestService(t, clock)

	issued, err := svc.Issue("juan")
	require.NoError(t, err)

	for _, at := range []time.Duration{24 * time.Hour, 24*time.Hour + time.Second, 48 * time.Hour} {
		clock.t = issuedAt.Add(at)
		_, err := svc.Validate(issued.Token)
		assert.ErrorIs(t, err, domain.ErrTokenExpired, "validate at +%s", at)
	}
}

func TestJWTService_TamperedSignature(t *testing.T) {
	clock := &fakeClock{t: issuedAt}
	svc := newTestService(t, clock)

	issued, err := svc.Issue("juan")
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	require.Len(t, parts, 3)
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)

	for i := 0; i < len(sig)*8; i++ {
		flipped := make([]byte, len(sig))
		copy(flipped, sig)
		flipped[i/8] ^= 1 << (i % 8)

		tampered := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(flipped)
		_, err := svc.Validate(tampered)
		require.ErrorIs(t, err, domain.ErrTokenInvalid, "bit %d", i)
	}
}

func TestJWTService_TamperedPayload(t *testing.T) {
	clock := &fakeClock{t: issuedAt}
	svc := newTestService(t, clock)

	issued, err := svc.Issue("juan")
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin","iat":1741944413,"exp":4102444800}`))
	_, err = svc.Validate(parts[0] + "." + payload + "." + parts[2])
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	clock := &fakeClock{t: issuedAt}
	svc := newTestService(t, clock)

	claims := jwt.RegisteredClaims{
		Subject:   "juan",
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}

	sign := func(method jwt.SigningMethod, key interface{}, c jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, c).SignedString(key)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt-token"},
		{"malformed segments", "header.payload.signature"},
		{"wrong key", sign(jwt.SigningMethodHS256, []byte("another-secret-key-for-jwt-signing-xx"), claims)},
		{"other hmac algorithm same key", sign(jwt.SigningMethodHS384, []byte(testSecret), claims)},
		{"alg none", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, claims)},
		{"missing subject", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		})},
		{"missing expiry", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
			Subject:  "juan",
			IssuedAt: jwt.NewNumericDate(issuedAt),
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, domain.ErrTokenInvalid)
		})
	}
}

func TestJWTService_DifferentInstanceSameSecret(t *testing.T) {
	clock := &fakeClock{t: issuedAt}
	issued, err := newTestService(t, clock).Issue("juan")
	require.NoError(t, err)

	claims, err := newTestService(t, clock).Validate(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "juan", claims.Subject)
}

func TestNewJWTService_Config(t *testing.T) {
	_, err := NewJWTService("short", time.Hour)
	assert.ErrorIs(t, err, ErrWeakSecret)

	svc, err := NewJWTService(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, svc.TTL())

	_, err = svc.Issue("")
	assert.Error(t, err)
}
