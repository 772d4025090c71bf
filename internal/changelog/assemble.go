package changelog

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"

	"modship/pkg/modtypes"
)

// CommitSource provides the raw commits of the intervals between change points.
type CommitSource interface {
	// CommitsBetween returns the commits in the half-open range (older, newer],
	// newest-first. An empty older bound means "from the beginning of history".
	CommitsBetween(older, newer string) ([]modtypes.CommitRecord, error)
}

// Assembler collects and categorizes the commits of each release interval into
// ordered changelog sections.
type Assembler struct {
	Source     CommitSource
	Classifier *Classifier

	// Now is the clock used for the unreleased section's date. Defaults to time.Now.
	Now func() time.Time
}

func (a *Assembler) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Assemble builds the changelog sections, newest-version-first.
//
// The unreleased interval (latest change point, exclusive, through the working
// tip) is labeled with the current version and today's date; it is emitted when
// it has classified entries or when this run just established a new version.
// Each historical interval is labeled with its change point's version and
// commit date, and is emitted only when it has classified entries or its
// version is the one just established.
func (a *Assembler) Assemble(points []modtypes.VersionChangePoint, current *semver.Version, justEstablished *semver.Version) ([]modtypes.ChangelogSection, error) {
	var sections []modtypes.ChangelogSection

	tipBound := ""
	if len(points) > 0 {
		tipBound = points[0].Hash
	}
	commits, err := a.Source.CommitsBetween(tipBound, "HEAD")
	if err != nil {
		return nil, fmt.Errorf("collect unreleased commits: %w", err)
	}
	entries := a.classifyAll(commits)
	if len(entries) > 0 || justEstablished != nil {
		sections = append(sections, modtypes.ChangelogSection{
			Version: current,
			Date:    a.now(),
			Entries: entries,
		})
	}

	for i := range points {
		older := ""
		if i+1 < len(points) {
			older = points[i+1].Hash
		}
		commits, err := a.Source.CommitsBetween(older, points[i].Hash)
		if err != nil {
			return nil, fmt.Errorf("collect commits for %s: %w", points[i].Version, err)
		}
		entries := a.classifyAll(commits)
		if len(entries) == 0 && (justEstablished == nil || !points[i].Version.Equal(justEstablished)) {
			continue
		}
		sections = append(sections, modtypes.ChangelogSection{
			Version: points[i].Version,
			Date:    points[i].Date,
			Entries: entries,
		})
	}

	return sections, nil
}

// classifyAll groups the classified commits by category, preserving log order
// within each category. Administrative commits drop out here.
func (a *Assembler) classifyAll(commits []modtypes.CommitRecord) map[string][]modtypes.ClassifiedCommit {
	entries := make(map[string][]modtypes.ClassifiedCommit)
	for _, rec := range commits {
		entry, ok := a.Classifier.Classify(rec)
		if !ok {
			continue
		}
		entries[entry.Category] = append(entries[entry.Category], entry)
	}
	return entries
}
