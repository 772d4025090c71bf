// Package changelog reconstructs the release changelog from git history: it
// classifies commits by the structured commit convention, replays the manifest
// history into a release timeline, and renders categorized sections.
package changelog

import (
	_ "embed"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"modship/pkg/modtypes"
)

//go:embed data/categories.yaml
var defaultCategoryData []byte

// categoryConfig is the structure of the embedded category mapping file.
type categoryConfig struct {
	Categories map[string]string `yaml:"categories"`
	Default    string            `yaml:"default"`
	Order      []string          `yaml:"order"`
}

// bumpSubjectPattern matches the administrative version-bump commit subject.
// BumpCommitMessage below produces exactly this shape; the two must stay in
// lockstep so the classifier reliably excludes the commits the reconciler creates.
var bumpSubjectPattern = regexp.MustCompile(`^chore: Update version to \d+\.\d+\.\d+$`)

// subjectPattern matches the structured commit convention: type(scope)!: message.
// Scope and the breaking marker are optional.
var subjectPattern = regexp.MustCompile(`^([A-Za-z]+)(?:\(([^)]*)\))?(!)?: (.+)$`)

// BumpCommitMessage renders the commit message used when recording a version bump.
func BumpCommitMessage(v *semver.Version) string {
	return fmt.Sprintf("chore: Update version to %s", v.String())
}

// IsBumpCommit reports whether a subject line is an administrative version-bump commit.
func IsBumpCommit(subject string) bool {
	return bumpSubjectPattern.MatchString(subject)
}

// Classifier turns commit records into categorized changelog entries.
type Classifier struct {
	categories      map[string]string
	defaultCategory string
	order           []string

	// IsAdministrative decides which commits are excluded from changelog
	// content entirely. Defaults to IsBumpCommit; tests substitute fixtures.
	IsAdministrative func(subject string) bool
}

// NewClassifier builds a Classifier from the embedded category table, with
// optional per-type overrides layered on top.
func NewClassifier(overrides map[string]string) (*Classifier, error) {
	var cfg categoryConfig
	if err := yaml.Unmarshal(defaultCategoryData, &cfg); err != nil {
		return nil, fmt.Errorf("parse embedded category table: %w", err)
	}

	for typ, category := range overrides {
		cfg.Categories[typ] = category
	}

	return &Classifier{
		categories:       cfg.Categories,
		defaultCategory:  cfg.Default,
		order:            cfg.Order,
		IsAdministrative: IsBumpCommit,
	}, nil
}

// Order returns the fixed category display order.
func (c *Classifier) Order() []string {
	return c.order
}

// Classify parses a commit into a changelog entry. The second return is false
// when the commit is administrative and must not appear in any changelog output.
func (c *Classifier) Classify(rec modtypes.CommitRecord) (modtypes.ClassifiedCommit, bool) {
	if c.IsAdministrative(rec.Subject) {
		return modtypes.ClassifiedCommit{}, false
	}

	m := subjectPattern.FindStringSubmatch(rec.Subject)
	if m == nil {
		// Unstructured subject: the whole line is the message
		return modtypes.ClassifiedCommit{
			Category: c.defaultCategory,
			Message:  rec.Subject,
			Body:     rec.Body,
		}, true
	}

	category, ok := c.categories[m[1]]
	if !ok {
		category = c.defaultCategory
	}

	return modtypes.ClassifiedCommit{
		Category: category,
		Scope:    m[2],
		Breaking: m[3] == "!",
		Message:  m[4],
		Body:     rec.Body,
	}, true
}
