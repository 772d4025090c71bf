package version

import (
	"errors"
	"time"

	"github.com/Masterminds/semver/v3"

	"modship/internal/gitx"
	"modship/internal/logger"
	"modship/internal/manifest"
	"modship/pkg/modtypes"
)

// GitHistory adapts a gitx.Repo and a manifest path into the history views the
// resolver and the changelog builders consume. Manifest reads at a commit are
// memoized per hash so repeated lookups do not re-run the git subprocess.
type GitHistory struct {
	repo         *gitx.Repo
	manifestPath string

	versions map[string]*semver.Version // nil value = known absent/unparsable
	parents  map[string]string
}

// NewGitHistory returns a GitHistory over the given repository and manifest path.
func NewGitHistory(repo *gitx.Repo, manifestPath string) *GitHistory {
	return &GitHistory{
		repo:         repo,
		manifestPath: manifestPath,
		versions:     make(map[string]*semver.Version),
		parents:      make(map[string]string),
	}
}

// ManifestCommits returns the hashes of commits touching the manifest, newest-first.
func (h *GitHistory) ManifestCommits() ([]string, error) {
	return h.repo.LogHashes(h.manifestPath)
}

// VersionAt returns the parsed manifest version at a commit. Absent or
// unparsable manifest content is reported once and then treated as "no data".
func (h *GitHistory) VersionAt(hash string) (*semver.Version, bool) {
	if v, seen := h.versions[hash]; seen {
		return v, v != nil
	}

	content, err := h.repo.FileContentAt(hash, h.manifestPath)
	if err != nil {
		if !errors.Is(err, gitx.ErrNotFound) {
			logger.Warn("Cannot read manifest at commit", "hash", hash, "error", err)
		}
		h.versions[hash] = nil
		return nil, false
	}

	v, err := manifest.VersionFromContent(content, hash)
	if err != nil {
		logger.Warn("Skipping unreadable manifest content", "hash", hash, "error", err)
		h.versions[hash] = nil
		return nil, false
	}

	h.versions[hash] = v
	return v, true
}

// ParentOf returns the first parent of a commit, memoized.
func (h *GitHistory) ParentOf(hash string) (string, error) {
	if p, seen := h.parents[hash]; seen {
		return p, nil
	}
	p, err := h.repo.ParentOf(hash)
	if err != nil {
		return "", err
	}
	h.parents[hash] = p
	return p, nil
}

// CommitsSince returns the commits after hash (exclusive) through HEAD, newest-first.
func (h *GitHistory) CommitsSince(hash string) ([]modtypes.CommitRecord, error) {
	return h.repo.CommitsSince(hash)
}

// CommitsBetween returns the commits in the half-open range (older, newer], newest-first.
func (h *GitHistory) CommitsBetween(older, newer string) ([]modtypes.CommitRecord, error) {
	return h.repo.CommitsBetween(older, newer)
}

// CommitDate returns the committer date of a commit.
func (h *GitHistory) CommitDate(hash string) (time.Time, error) {
	return h.repo.CommitDate(hash)
}
