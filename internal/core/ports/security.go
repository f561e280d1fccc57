package ports

import (
	"context"
	"time"
)

// PasswordHasher produces and checks salted, deliberately slow digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
	// VerifyDummy burns the same CPU as Verify against a throwaway hash so
	// that unknown usernames are not observable through response timing.
	VerifyDummy(plaintext string)
}

// TokenClaims is the validated content of an identity token.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedToken is a signed token together with its claims.
type IssuedToken struct {
	Token  string
	Claims TokenClaims
}

// TokenService issues and validates signed, time-bounded identity tokens.
// Validate returns domain.ErrTokenExpired or domain.ErrTokenInvalid and
// never panics on malformed input.
type TokenService interface {
	Issue(subject string) (IssuedToken, error)
	Validate(token string) (TokenClaims, error)
}

// RegistrationGuard serialises concurrent registrations of one username.
// It is an optimisation only; the store's unique index stays authoritative,
// so a held lock never means the username is taken.
//
// Acquire returns ok=false when another registration holds the lock. The
// returned token identifies this holder; Release only drops a lock that
// still carries it.
type RegistrationGuard interface {
	Acquire(ctx context.Context, username string) (token string, ok bool, err error)
	Release(ctx context.Context, username, token string) error
}
