// Package modtypes defines the shared data model for the modship release pipeline.
// This file contains changelog timeline and section types.
package modtypes

import (
	"time"

	"github.com/Masterminds/semver/v3"
)

// VersionChangePoint marks a commit at which the manifest's version string
// changed from its previously recorded value. The ordered sequence of change
// points is the authoritative release timeline, reconstructed from the commit
// log on every run.
type VersionChangePoint struct {
	Hash    string          `json:"hash"`    // Commit where the new version first appears
	Version *semver.Version `json:"version"` // Parsed manifest version at that commit
	Date    time.Time       `json:"date"`    // Commit date of the change point
}

// ChangelogSection groups the classified commits of one release interval.
type ChangelogSection struct {
	Version *semver.Version               `json:"version"` // Version this section describes
	Date    time.Time                     `json:"date"`    // Release date shown in the header
	Entries map[string][]ClassifiedCommit `json:"entries"` // Category name -> ordered entries
}

// EntryCount returns the total number of classified entries across all categories.
func (s ChangelogSection) EntryCount() int {
	n := 0
	for _, entries := range s.Entries {
		n += len(entries)
	}
	return n
}
