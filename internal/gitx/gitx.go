// Package gitx wraps the git subprocess behind a small query/mutation API.
// Read queries that fail report a QueryError so callers can tell a broken
// repository apart from a legitimately empty result; mutations report a
// separate MutationError and are always fatal to the caller.
package gitx

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"modship/internal/logger"
	"modship/pkg/modtypes"
)

// ErrNotFound signals that a path does not exist at the requested commit.
// This is the "legitimately empty" outcome of FileContentAt, not a failure.
var ErrNotFound = errors.New("path not present at commit")

// QueryError reports a failed read-only query against history.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("git query %s failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// MutationError reports a failed state-changing git operation (add, commit, push, tag).
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("git %s failed: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// Runner executes a single git invocation and returns its stdout.
// Tests substitute a fake; production uses ExecRunner.
type Runner interface {
	Run(args ...string) (string, error)
}

// ExecRunner shells out to the git binary rooted at RepoPath.
type ExecRunner struct {
	RepoPath string
}

// Run executes git with the given arguments, returning stdout.
// On a non-zero exit the returned error carries the trimmed stderr text.
func (r ExecRunner) Run(args ...string) (string, error) {
	full := append([]string{"-C", r.RepoPath}, args...)
	logger.GitCommand(full)

	cmd := exec.Command("git", full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%s: %w", msg, err)
	}
	return stdout.String(), nil
}

// Repo exposes the query and mutation surface over a single repository.
type Repo struct {
	run Runner
}

// Open returns a Repo backed by the git binary for the repository at path.
func Open(path string) *Repo {
	return &Repo{run: ExecRunner{RepoPath: path}}
}

// NewRepo returns a Repo backed by a custom Runner. Used by tests.
func NewRepo(r Runner) *Repo {
	return &Repo{run: r}
}

// Head returns the full hash of the current HEAD commit.
func (g *Repo) Head() (string, error) {
	out, err := g.run.Run("rev-parse", "HEAD")
	if err != nil {
		return "", &QueryError{Op: "rev-parse HEAD", Err: err}
	}
	return strings.TrimSpace(out), nil
}

// IsClean reports whether the working tree has no staged or unstaged changes.
func (g *Repo) IsClean() (bool, error) {
	out, err := g.run.Run("status", "--porcelain")
	if err != nil {
		return false, &QueryError{Op: "status", Err: err}
	}
	return strings.TrimSpace(out) == "", nil
}

// LogHashes returns commit hashes newest-first, optionally restricted to
// commits touching pathFilter. An empty history yields an empty slice, not an error.
func (g *Repo) LogHashes(pathFilter string) ([]string, error) {
	args := []string{"log", "--pretty=format:%H"}
	if pathFilter != "" {
		args = append(args, "--", pathFilter)
	}
	out, err := g.run.Run(args...)
	if err != nil {
		return nil, &QueryError{Op: "log", Err: err}
	}
	return splitLines(out), nil
}

// FileContentAt returns the content of path as recorded at the given commit.
// Returns ErrNotFound when the path does not exist in that commit's tree.
func (g *Repo) FileContentAt(hash, path string) (string, error) {
	out, err := g.run.Run("show", hash+":"+path)
	if err != nil {
		if strings.Contains(err.Error(), "does not exist") ||
			strings.Contains(err.Error(), "exists on disk, but not in") {
			return "", ErrNotFound
		}
		return "", &QueryError{Op: "show " + hash + ":" + path, Err: err}
	}
	return out, nil
}

// ParentOf returns the first parent of the given commit, or "" for the root commit.
func (g *Repo) ParentOf(hash string) (string, error) {
	out, err := g.run.Run("rev-list", "--parents", "-n", "1", hash)
	if err != nil {
		return "", &QueryError{Op: "rev-list --parents " + hash, Err: err}
	}
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) < 2 {
		return "", nil
	}
	return fields[1], nil
}

// CountCommitsBetween returns the number of commits reachable from newer but not older.
func (g *Repo) CountCommitsBetween(older, newer string) (int, error) {
	out, err := g.run.Run("rev-list", "--count", older+".."+newer)
	if err != nil {
		return 0, &QueryError{Op: "rev-list --count", Err: err}
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, &QueryError{Op: "rev-list --count", Err: fmt.Errorf("unexpected output %q: %w", out, err)}
	}
	return n, nil
}

// CommitDate returns the committer date of the given ref.
func (g *Repo) CommitDate(ref string) (time.Time, error) {
	out, err := g.run.Run("show", "-s", "--format=%cI", ref)
	if err != nil {
		return time.Time{}, &QueryError{Op: "show --format=%cI " + ref, Err: err}
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(out))
	if err != nil {
		return time.Time{}, &QueryError{Op: "show --format=%cI " + ref, Err: fmt.Errorf("unparsable date %q: %w", out, err)}
	}
	return t, nil
}

// ListTags returns tag names ordered by the given sort key
// (e.g. "-v:refname" for descending version order).
func (g *Repo) ListTags(sortKey string) ([]string, error) {
	if sortKey == "" {
		sortKey = "-v:refname"
	}
	out, err := g.run.Run("tag", "--sort="+sortKey)
	if err != nil {
		return nil, &QueryError{Op: "tag --sort", Err: err}
	}
	return splitLines(out), nil
}

// recordSeparator and fieldSeparator keep the log format unambiguous for
// multi-line commit bodies.
const (
	fieldSeparator  = "\x1f"
	recordSeparator = "\x1e"
)

var logFormat = strings.Join([]string{"%H", "%P", "%aI", "%s", "%b"}, fieldSeparator) + recordSeparator

// CommitsBetween returns the commits in the half-open range (older, newer],
// newest-first. An empty older bound means "from the beginning of history".
func (g *Repo) CommitsBetween(older, newer string) ([]modtypes.CommitRecord, error) {
	rangeSpec := newer
	if older != "" {
		rangeSpec = older + ".." + newer
	}
	out, err := g.run.Run("log", "--pretty=format:"+logFormat, rangeSpec)
	if err != nil {
		return nil, &QueryError{Op: "log " + rangeSpec, Err: err}
	}
	return parseCommitRecords(out)
}

// CommitsSince returns the commits after the given hash (exclusive) through HEAD,
// newest-first.
func (g *Repo) CommitsSince(hash string) ([]modtypes.CommitRecord, error) {
	return g.CommitsBetween(hash, "HEAD")
}

func parseCommitRecords(out string) ([]modtypes.CommitRecord, error) {
	var records []modtypes.CommitRecord
	for _, chunk := range strings.Split(out, recordSeparator) {
		chunk = strings.TrimLeft(chunk, "\n")
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		parts := strings.SplitN(chunk, fieldSeparator, 5)
		if len(parts) != 5 {
			return nil, &QueryError{Op: "log", Err: fmt.Errorf("malformed record %q", chunk)}
		}
		rec := modtypes.CommitRecord{
			Hash:    strings.TrimSpace(parts[0]),
			Subject: strings.TrimSpace(parts[3]),
			Body:    strings.TrimSpace(parts[4]),
		}
		if parents := strings.Fields(parts[1]); len(parents) > 0 {
			rec.ParentHash = parents[0]
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[2])); err == nil {
			rec.AuthorDate = t
		}
		records = append(records, rec)
	}
	return records, nil
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
