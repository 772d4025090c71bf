// Package manifest reads and rewrites the tracked mod manifest file.
// Only the version field is ever rewritten; every other byte of the document,
// including formatting and key order, is preserved as-is.
package manifest

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"modship/internal/logger"
)

// ParseError reports manifest content that could not be interpreted.
// It is fatal for the working-tree manifest and skippable when the content
// came from a historical commit.
type ParseError struct {
	Source string // file path or commit hash the content came from
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("manifest %s: %s", e.Source, e.Reason)
}

// VersionFromContent extracts and parses the version field from raw manifest
// JSON. Used both for the working-tree manifest and for content read at
// historical commits.
func VersionFromContent(content, source string) (*semver.Version, error) {
	if !gjson.Valid(content) {
		return nil, &ParseError{Source: source, Reason: "not valid JSON"}
	}
	field := gjson.Get(content, "version")
	if !field.Exists() {
		return nil, &ParseError{Source: source, Reason: "version field missing"}
	}
	v, err := semver.StrictNewVersion(field.String())
	if err != nil {
		return nil, &ParseError{Source: source, Reason: fmt.Sprintf("invalid version %q: %v", field.String(), err)}
	}
	return v, nil
}

// Document is the working-tree manifest loaded into memory.
type Document struct {
	Path string
	raw  string
}

// Load reads the manifest file at path and validates it is parseable JSON
// with a usable version field.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	doc := &Document{Path: path, raw: string(data)}
	if _, err := doc.Version(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Raw returns the manifest content exactly as loaded (or last rewritten).
func (d *Document) Raw() string {
	return d.raw
}

// Version returns the parsed version field.
func (d *Document) Version() (*semver.Version, error) {
	return VersionFromContent(d.raw, d.Path)
}

// Name returns the manifest's name field, or "" when absent.
func (d *Document) Name() string {
	return gjson.Get(d.raw, "name").String()
}

// SetVersion rewrites the version field in place and writes the file back.
// All other fields and formatting survive the rewrite untouched.
func (d *Document) SetVersion(v *semver.Version) error {
	updated, err := sjson.Set(d.raw, "version", v.String())
	if err != nil {
		return fmt.Errorf("rewrite version field: %w", err)
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(d.raw, updated, false)
	logger.Debug("Manifest rewrite", "manifest", d.Path, "diff", dmp.DiffPrettyText(diffs))

	if err := os.WriteFile(d.Path, []byte(updated), 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	d.raw = updated
	return nil
}
