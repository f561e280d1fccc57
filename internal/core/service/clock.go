package service

import "time"

// timestamp returns the current UTC time at millisecond precision, the
// resolution of a BSON datetime, so every store hands back the same value.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
