package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `{
  "name": "lunar-lander",
  "version": "0.0.26",
  "author":   "someone",
  "tags": ["physics", "qol"]
}
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mod.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	doc, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	v, err := doc.Version()
	require.NoError(t, err)
	assert.Equal(t, "0.0.26", v.String())
	assert.Equal(t, "lunar-lander", doc.Name())
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid json", content: `{"name": "x", "version": `},
		{name: "missing version field", content: `{"name": "x"}`},
		{name: "unparsable version", content: `{"name": "x", "version": "latest"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeManifest(t, tt.content))
			require.Error(t, err)
			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestSetVersion_PreservesOtherFieldsAndFormatting(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	doc, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, doc.SetVersion(semver.MustParse("0.0.30")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, `"version": "0.0.30"`)
	assert.NotContains(t, content, "0.0.26")

	// Untouched fields keep their exact original spelling, including the
	// irregular spacing around "author"
	assert.Contains(t, content, `"name": "lunar-lander"`)
	assert.Contains(t, content, `"author":   "someone"`)
	assert.Contains(t, content, `"tags": ["physics", "qol"]`)

	v, err := doc.Version()
	require.NoError(t, err)
	assert.Equal(t, "0.0.30", v.String())
}

func TestVersionFromContent(t *testing.T) {
	v, err := VersionFromContent(`{"version": "1.2.3"}`, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v.String())

	_, err = VersionFromContent(`not json`, "abc123")
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "abc123", parseErr.Source)
}
