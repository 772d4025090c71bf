// Package modtypes defines the shared data model for the modship release pipeline.
// This file contains commit-level types sourced from the version control log.
package modtypes

import "time"

// CommitRecord is an immutable view of a single commit as reported by git.
// It is never mutated after construction; classification consumes it read-only.
type CommitRecord struct {
	Hash       string    `json:"hash"`                  // Full commit hash
	ParentHash string    `json:"parent_hash,omitempty"` // First parent hash, empty for the root commit
	AuthorDate time.Time `json:"author_date"`           // Author date of the commit
	Subject    string    `json:"subject"`               // First line of the commit message
	Body       string    `json:"body,omitempty"`        // Remaining message lines, may be empty
}

// IsRoot reports whether the commit has no parent.
func (c CommitRecord) IsRoot() bool {
	return c.ParentHash == ""
}

// ShortHash returns the abbreviated (7 character) form of the commit hash.
func (c CommitRecord) ShortHash() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	}
	return c.Hash
}

// ClassifiedCommit is a CommitRecord reduced to its changelog-facing content.
// Administrative version-bump commits never produce a ClassifiedCommit.
type ClassifiedCommit struct {
	Category string `json:"category"`           // Display category (Features, Bugfixes, ...)
	Scope    string `json:"scope,omitempty"`    // Optional scope from type(scope): subject form
	Breaking bool   `json:"breaking,omitempty"` // True when the subject carried the ! marker
	Message  string `json:"message"`            // Free-text message portion of the subject
	Body     string `json:"body,omitempty"`     // Verbatim commit body, rendered as detail lines
}
