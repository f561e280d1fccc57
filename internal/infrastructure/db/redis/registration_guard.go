package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultRegistrationLockTTL = 5 * time.Second

// releaseScript deletes the lock only while it still holds the caller's
// token, so a holder whose TTL lapsed cannot drop a later holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RegistrationGuard serialises registrations of the same username across
// instances with a short-lived SETNX lock.
// Key format: register:<username>
type RegistrationGuard struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRegistrationGuard wraps client. A non-positive ttl falls back to 5s.
func NewRegistrationGuard(client redis.Cmdable, ttl time.Duration) *RegistrationGuard {
	if ttl <= 0 {
		ttl = defaultRegistrationLockTTL
	}
	return &RegistrationGuard{client: client, ttl: ttl}
}

// Acquire tries to take the lock for username. On success it returns the
// token that Release needs.
func (g *RegistrationGuard) Acquire(ctx context.Context, username string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.key(username), token, g.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("registration lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release drops the lock if token still owns it. The TTL covers callers that
// never get here.
func (g *RegistrationGuard) Release(ctx context.Context, username, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{g.key(username)}, token).Err(); err != nil {
		return fmt.Errorf("registration unlock: %w", err)
	}
	return nil
}

func (g *RegistrationGuard) key(username string) string {
	return "register:" + username
}
