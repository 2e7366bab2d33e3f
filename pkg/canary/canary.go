// Package canary assigns users to a staged-rollout cohort. Membership is
// deterministic and stateless: the same salt, user id and configuration
// always produce the same answer.
package canary

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Controller decides cohort membership. The zero value means the canary is
// off and the feature is fully enabled.
type Controller struct {
	// Enabled switches the canary on. When false, every user is in.
	Enabled bool

	// Percent of the user base enrolled, 0..100. 0 enrolls nobody (beyond
	// the include list), 100 everybody (minus the exclude list).
	Percent int

	// Salt decorrelates cohort assignment across features.
	Salt string

	// Include force-enrolls users; Exclude wins over everything.
	Include map[string]bool
	Exclude map[string]bool
}

// InCohort reports whether the user participates in the gated behavior.
// Precedence: exclude list, include list, canary disabled, then the hash
// bucket check.
func (c *Controller) InCohort(userID string) bool {
	if c.Exclude[userID] {
		return false
	}
	if c.Include[userID] {
		return true
	}
	if !c.Enabled {
		return true
	}
	if c.Percent <= 0 {
		return false
	}
	if c.Percent >= 100 {
		return true
	}
	return Bucket(c.Salt, userID) < c.Percent
}

// Bucket maps a user to a stable bucket in [0, 100): sha256(salt + ":" + id),
// first 8 hex chars as an integer, mod 100.
func Bucket(salt, userID string) int {
	sum := sha256.Sum256([]byte(salt + ":" + userID))
	prefix := hex.EncodeToString(sum[:4])
	v, err := strconv.ParseUint(prefix, 16, 64)
	if err != nil {
		// Unreachable: the prefix is always valid hex.
		return 0
	}
	return int(v % 100)
}
