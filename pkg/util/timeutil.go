package util

import "time"

// NowUTC is the default clock for expiry bookkeeping. Tests swap it for a fixed func.
func NowUTC() time.Time {
	return time.Now().UTC()
}
