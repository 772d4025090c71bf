// Package version implements the version derivation core: locating the commit
// that started the current major.minor series, counting the commits since it,
// and reconciling the result against the manifest's recorded version.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"modship/internal/logger"
	"modship/pkg/modtypes"
)

// History is the read-only view of manifest history the resolver needs.
// Production code uses GitHistory; tests substitute in-memory fixtures.
type History interface {
	// ManifestCommits returns the hashes of commits touching the manifest, newest-first.
	ManifestCommits() ([]string, error)

	// VersionAt returns the parsed manifest version at a commit. The second
	// return is false when the manifest is absent or unparsable there.
	VersionAt(hash string) (*semver.Version, bool)

	// ParentOf returns the first parent of a commit, or "" for the root commit.
	ParentOf(hash string) (string, error)

	// CommitsSince returns the commits after hash (exclusive) through the tip, newest-first.
	CommitsSince(hash string) ([]modtypes.CommitRecord, error)
}

// SeriesPrefix renders the "major.minor." prefix shared by all versions of a series.
func SeriesPrefix(v *semver.Version) string {
	return fmt.Sprintf("%d.%d.", v.Major(), v.Minor())
}

// FindSeriesBase walks the manifest history newest-first and returns the hash
// of the commit that established the given series. A commit qualifies when its
// manifest version carries the prefix and it is either the root commit, the
// first commit whose parent's version leaves the series, or an explicit
// patch-zero reset. The first match during the walk wins, which is the most
// recent qualifying commit, not the oldest.
func FindSeriesBase(h History, prefix string) (string, bool, error) {
	hashes, err := h.ManifestCommits()
	if err != nil {
		return "", false, fmt.Errorf("list manifest commits: %w", err)
	}

	for _, hash := range hashes {
		v, ok := h.VersionAt(hash)
		if !ok {
			continue
		}
		if !strings.HasPrefix(v.String(), prefix) {
			continue
		}

		if v.Patch() == 0 {
			return hash, true, nil
		}

		parent, err := h.ParentOf(hash)
		if err != nil {
			logger.Warn("Cannot resolve parent, skipping commit", "hash", hash, "error", err)
			continue
		}
		if parent == "" {
			return hash, true, nil
		}

		pv, ok := h.VersionAt(parent)
		if !ok || !strings.HasPrefix(pv.String(), prefix) {
			return hash, true, nil
		}
	}

	return "", false, nil
}

// PatchCount counts the commits after base (exclusive) that are not
// administrative version-bump commits.
func PatchCount(h History, base string, isAdministrative func(subject string) bool) (int, error) {
	commits, err := h.CommitsSince(base)
	if err != nil {
		return 0, fmt.Errorf("list commits since series base: %w", err)
	}

	n := 0
	for _, c := range commits {
		if !isAdministrative(c.Subject) {
			n++
		}
	}
	return n, nil
}

// ResolveCandidate computes the candidate next version for the series of the
// current manifest version: same major.minor, patch taken from the commit
// count since the series base. When no commit ever recorded a version in the
// series, fallbackPatch is used instead.
func ResolveCandidate(h History, current *semver.Version, isAdministrative func(string) bool, fallbackPatch int) (*semver.Version, error) {
	prefix := SeriesPrefix(current)

	base, found, err := FindSeriesBase(h, prefix)
	if err != nil {
		return nil, err
	}

	patch := fallbackPatch
	if found {
		patch, err = PatchCount(h, base, isAdministrative)
		if err != nil {
			return nil, err
		}
		logger.Debug("Series base located", "hash", base, "patch_count", patch)
	} else {
		logger.Warn("No series base found, using fallback patch count", "prefix", prefix, "fallback", fallbackPatch)
	}

	return semver.New(current.Major(), current.Minor(), uint64(patch), "", ""), nil
}
