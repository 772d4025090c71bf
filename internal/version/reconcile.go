package version

import "github.com/Masterminds/semver/v3"

// Decision is the outcome of reconciling the computed candidate against the
// version currently recorded in the manifest. It is a pure value; the caller
// performs the manifest write and commit when ShouldCommit is set.
type Decision struct {
	Version      *semver.Version
	ShouldCommit bool
}

// Reconcile applies the monotonicity policy:
//
//	candidate > current            -> adopt the candidate
//	candidate == current           -> keep current, no write
//	candidate < current (any form) -> keep current (manual override respected)
//
// Versions are ordered lexicographically by (major, minor, patch).
func Reconcile(current, candidate *semver.Version) Decision {
	if candidate.GreaterThan(current) {
		return Decision{Version: candidate, ShouldCommit: true}
	}
	return Decision{Version: current, ShouldCommit: false}
}
