package changelog

import (
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeManifestHistory serves canned manifest versions per commit.
// Hashes are ordered newest-first, matching git log.
type fakeManifestHistory struct {
	hashes   []string
	versions map[string]string
	dates    map[string]time.Time
}

func (f *fakeManifestHistory) ManifestCommits() ([]string, error) { return f.hashes, nil }

func (f *fakeManifestHistory) VersionAt(hash string) (*semver.Version, bool) {
	s, ok := f.versions[hash]
	if !ok {
		return nil, false
	}
	return semver.MustParse(s), true
}

func (f *fakeManifestHistory) CommitDate(hash string) (time.Time, error) {
	return f.dates[hash], nil
}

func day(n int) time.Time {
	return time.Date(2026, 1, n, 0, 0, 0, 0, time.UTC)
}

func TestBuildTimeline(t *testing.T) {
	h := &fakeManifestHistory{
		hashes: []string{"h3", "h2", "h1"},
		versions: map[string]string{
			"h1": "0.1.0",
			"h2": "0.1.1",
			"h3": "0.2.0",
		},
		dates: map[string]time.Time{"h1": day(1), "h2": day(2), "h3": day(3)},
	}

	points, err := BuildTimeline(h)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// Newest-first
	assert.Equal(t, "h3", points[0].Hash)
	assert.Equal(t, "0.2.0", points[0].Version.String())
	assert.Equal(t, "h2", points[1].Hash)
	assert.Equal(t, "0.1.1", points[1].Version.String())
	assert.Equal(t, "h1", points[2].Hash)
	assert.Equal(t, "0.1.0", points[2].Version.String())
	assert.Equal(t, day(3), points[0].Date)
}

func TestBuildTimeline_UnchangedVersionEmitsNothing(t *testing.T) {
	h := &fakeManifestHistory{
		hashes: []string{"h3", "h2", "h1"},
		versions: map[string]string{
			"h1": "0.1.0",
			"h2": "0.1.0", // manifest touched, version unchanged
			"h3": "0.1.1",
		},
		dates: map[string]time.Time{"h1": day(1), "h2": day(2), "h3": day(3)},
	}

	points, err := BuildTimeline(h)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "h3", points[0].Hash)
	assert.Equal(t, "h1", points[1].Hash)
}

func TestBuildTimeline_CorruptionResetsBaseline(t *testing.T) {
	// h2 has unparsable manifest content. The baseline resets to unknown, so
	// h3 emits a change point even though its version equals h1's.
	h := &fakeManifestHistory{
		hashes: []string{"h3", "h2", "h1"},
		versions: map[string]string{
			"h1": "0.1.0",
			"h3": "0.1.0",
		},
		dates: map[string]time.Time{"h1": day(1), "h3": day(3)},
	}

	points, err := BuildTimeline(h)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "h3", points[0].Hash)
	assert.Equal(t, "h1", points[1].Hash)
}

func TestBuildTimeline_EmptyHistory(t *testing.T) {
	points, err := BuildTimeline(&fakeManifestHistory{})
	require.NoError(t, err)
	assert.Empty(t, points)
}
