package release

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modship/internal/config"
	"modship/internal/gitx"
)

// scriptedGit answers the git queries of a small fixed repository:
//
//	h1 (root)  manifest 0.0.0, subject "feat: bootstrap mod"
//	h2         manifest 0.0.2, subject "chore: Update version to 0.0.2"
//	c1..c4     4 feature/fix commits since h2 (HEAD is c4)
//
// Mutations are recorded, not executed.
type scriptedGit struct {
	dirty     bool
	mutations []string
}

func record(hash, parent, date, subject string) string {
	return strings.Join([]string{hash, parent, date, subject, ""}, "\x1f") + "\x1e\n"
}

func (s *scriptedGit) Run(args ...string) (string, error) {
	switch {
	case args[0] == "status":
		if s.dirty {
			return " M mod.json\n", nil
		}
		return "", nil

	case args[0] == "log" && len(args) > 2 && args[len(args)-2] == "--":
		// Manifest-touching history, newest-first
		return "h2\nh1\n", nil

	case args[0] == "log":
		switch args[len(args)-1] {
		case "h1..HEAD":
			return record("c4", "c3", "2026-08-29T10:00:00Z", "feat(ui): add toggle") +
				record("c3", "c2", "2026-08-28T10:00:00Z", "fix: save crash") +
				record("c2", "c1", "2026-08-27T10:00:00Z", "perf: faster load") +
				record("c1", "h2", "2026-08-26T10:00:00Z", "docs: usage notes") +
				record("h2", "h1", "2026-08-25T10:00:00Z", "chore: Update version to 0.0.2"), nil
		case "h2..HEAD":
			return record("c4", "c3", "2026-08-29T10:00:00Z", "feat(ui): add toggle") +
				record("c3", "c2", "2026-08-28T10:00:00Z", "fix: save crash") +
				record("c2", "c1", "2026-08-27T10:00:00Z", "perf: faster load") +
				record("c1", "h2", "2026-08-26T10:00:00Z", "docs: usage notes"), nil
		case "h1..h2":
			return record("h2", "h1", "2026-08-25T10:00:00Z", "chore: Update version to 0.0.2"), nil
		case "h1":
			return record("h1", "", "2026-08-24T10:00:00Z", "feat: bootstrap mod"), nil
		}
		return "", fmt.Errorf("unexpected log range %q", args[len(args)-1])

	case args[0] == "show" && args[1] == "-s":
		ref := args[len(args)-1]
		dates := map[string]string{
			"h1": "2026-08-24T10:00:00Z",
			"h2": "2026-08-25T10:00:00Z",
		}
		if d, ok := dates[ref]; ok {
			return d + "\n", nil
		}
		return "", fmt.Errorf("unexpected date query %q", ref)

	case args[0] == "show":
		contents := map[string]string{
			"h1:mod.json": `{"name": "lunar-lander", "version": "0.0.0"}`,
			"h2:mod.json": `{"name": "lunar-lander", "version": "0.0.2"}`,
		}
		if c, ok := contents[args[1]]; ok {
			return c, nil
		}
		return "", fmt.Errorf("fatal: path does not exist in %q", args[1])

	case args[0] == "rev-list" && args[1] == "--parents":
		parents := map[string]string{
			"h1": "h1",
			"h2": "h2 h1",
		}
		return parents[args[len(args)-1]] + "\n", nil

	case args[0] == "tag" && strings.HasPrefix(args[1], "--sort="):
		return "v0.0.2\nv0.0.0\n", nil

	case args[0] == "add" || args[0] == "commit" || args[0] == "push" || args[0] == "tag":
		s.mutations = append(s.mutations, strings.Join(args, " "))
		return "", nil
	}

	return "", fmt.Errorf("unexpected git invocation: %v", args)
}

func newTestPipeline(t *testing.T, git *scriptedGit) (*Pipeline, config.Settings) {
	t.Helper()

	repoDir := t.TempDir()
	manifestContent := `{"name": "lunar-lander", "version": "0.0.2"}`
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, "mod.json"), []byte(manifestContent), 0644))

	settings := config.Settings{
		RepoPath:      repoDir,
		ManifestPath:  "mod.json",
		Remote:        "origin",
		ChangelogName: "CHANGELOG.txt",
		StagingDir:    "staging",
		OutputDir:     "out",
	}

	p, err := NewWithRepo(settings, gitx.NewRepo(git))
	require.NoError(t, err)
	return p, settings
}

func countMutations(git *scriptedGit, op string) int {
	n := 0
	for _, m := range git.mutations {
		if strings.HasPrefix(m, op+" ") || m == op {
			n++
		}
	}
	return n
}

func TestRun_BumpAdoptsCandidateAndCommitsOnce(t *testing.T) {
	git := &scriptedGit{}
	p, settings := newTestPipeline(t, git)

	result, err := p.Run(ModeBump)
	require.NoError(t, err)

	// 4 non-administrative commits since the 0.0 series base -> 0.0.4 > 0.0.2
	assert.Equal(t, "0.0.4", result.Version.String())
	assert.True(t, result.Bumped)

	data, err := os.ReadFile(filepath.Join(settings.RepoPath, "mod.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "0.0.4"`)
	assert.Contains(t, string(data), `"name": "lunar-lander"`)

	assert.Equal(t, 1, countMutations(git, "commit"))
	assert.Equal(t, 1, countMutations(git, "push"))
	assert.Contains(t, git.mutations, "commit -m chore: Update version to 0.0.4")
	assert.Contains(t, git.mutations, "push origin HEAD")
	assert.Equal(t, 0, countMutations(git, "tag"))

	changelogText, err := os.ReadFile(result.ChangelogPath)
	require.NoError(t, err)
	assert.Contains(t, string(changelogText), "Version: 0.0.4")
	assert.Contains(t, string(changelogText), "add toggle (ui)")
	assert.NotContains(t, string(changelogText), "chore: Update version")
}

func TestRun_BuildModeNeverMutates(t *testing.T) {
	git := &scriptedGit{dirty: true} // build mode must not even care
	p, settings := newTestPipeline(t, git)

	result, err := p.Run(ModeBuild)
	require.NoError(t, err)

	// Manifest version taken verbatim, no resolution
	assert.Equal(t, "0.0.2", result.Version.String())
	assert.False(t, result.Bumped)
	assert.Empty(t, git.mutations)
	assert.NotEmpty(t, result.ArchivePath)

	data, err := os.ReadFile(filepath.Join(settings.RepoPath, "mod.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "0.0.2"`)
}

func TestRun_DirtyTreeAbortsBump(t *testing.T) {
	git := &scriptedGit{dirty: true}
	p, _ := newTestPipeline(t, git)

	_, err := p.Run(ModeBump)
	require.ErrorIs(t, err, ErrDirtyWorkTree)
	assert.Empty(t, git.mutations)
}

func TestRun_ReleaseTagsAfterPackaging(t *testing.T) {
	git := &scriptedGit{}
	p, _ := newTestPipeline(t, git)

	result, err := p.Run(ModeRelease)
	require.NoError(t, err)

	assert.Contains(t, git.mutations, "tag -a v0.0.4 -m v0.0.4")
	assert.Contains(t, git.mutations, "push origin refs/tags/v0.0.4")
	assert.True(t, strings.HasSuffix(result.ArchivePath, "lunar-lander-0.0.4.zip"), result.ArchivePath)

	_, err = os.Stat(result.ArchivePath)
	assert.NoError(t, err)
}
