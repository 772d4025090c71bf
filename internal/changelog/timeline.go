package changelog

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"

	"modship/internal/logger"
	"modship/pkg/modtypes"
)

// ManifestHistory is the view of manifest history the timeline builder needs.
// version.GitHistory satisfies it; tests substitute in-memory fixtures.
type ManifestHistory interface {
	// ManifestCommits returns the hashes of commits touching the manifest, newest-first.
	ManifestCommits() ([]string, error)

	// VersionAt returns the parsed manifest version at a commit, false when
	// the manifest is absent or unparsable there.
	VersionAt(hash string) (*semver.Version, bool)

	// CommitDate returns the committer date of a commit.
	CommitDate(hash string) (time.Time, error)
}

// BuildTimeline replays the manifest history oldest-first and emits a change
// point at every commit where the parsed version differs from the previous
// successfully-parsed version. Unparsable manifest content resets the
// comparison baseline to unknown, so the next parsable version always starts a
// new point rather than inheriting false continuity across corrupted history.
// The returned sequence is newest-first.
func BuildTimeline(h ManifestHistory) ([]modtypes.VersionChangePoint, error) {
	hashes, err := h.ManifestCommits()
	if err != nil {
		return nil, fmt.Errorf("list manifest commits: %w", err)
	}

	var points []modtypes.VersionChangePoint
	var prev *semver.Version

	for i := len(hashes) - 1; i >= 0; i-- {
		hash := hashes[i]

		v, ok := h.VersionAt(hash)
		if !ok {
			prev = nil
			continue
		}

		if prev == nil || !v.Equal(prev) {
			date, err := h.CommitDate(hash)
			if err != nil {
				logger.Warn("Cannot resolve commit date for change point", "hash", hash, "error", err)
			}
			points = append(points, modtypes.VersionChangePoint{Hash: hash, Version: v, Date: date})
		}
		prev = v
	}

	// Downstream consumers want the newest release first
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	return points, nil
}
