// Package release orchestrates a modship run: precondition checks, version
// resolution and reconciliation, changelog generation, packaging and tagging.
package release

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"modship/internal/changelog"
	"modship/internal/config"
	"modship/internal/gitx"
	"modship/internal/logger"
	"modship/internal/manifest"
	"modship/internal/version"
)

// ErrDirtyWorkTree aborts a mutating run before anything is touched.
var ErrDirtyWorkTree = errors.New("working tree has uncommitted changes; commit or stash them and re-run")

// Mode selects how much of the pipeline runs.
type Mode int

const (
	// ModeBuild reads the manifest version verbatim and never mutates the
	// repository. Used by CI.
	ModeBuild Mode = iota

	// ModeBump resolves the next version and records it (manifest write,
	// commit, push) without packaging.
	ModeBump

	// ModeRelease is ModeBump plus packaging and a pushed release tag.
	ModeRelease

	// ModeChangelog only regenerates the changelog artifact.
	ModeChangelog
)

// Result summarizes a completed run.
type Result struct {
	Version       *semver.Version
	Bumped        bool
	ChangelogPath string
	ArchivePath   string
}

// Pipeline wires the release steps over a single repository.
type Pipeline struct {
	Repo       *gitx.Repo
	History    *version.GitHistory
	Classifier *changelog.Classifier
	Settings   config.Settings

	log *log.Logger
}

// New builds a Pipeline for the configured repository.
func New(settings config.Settings) (*Pipeline, error) {
	return NewWithRepo(settings, gitx.Open(settings.RepoPath))
}

// NewWithRepo builds a Pipeline over an existing repository handle.
// Tests use it to substitute a scripted git runner.
func NewWithRepo(settings config.Settings, repo *gitx.Repo) (*Pipeline, error) {
	classifier, err := changelog.NewClassifier(settings.CategoryOverrides)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		Repo:       repo,
		History:    version.NewGitHistory(repo, settings.ManifestPath),
		Classifier: classifier,
		Settings:   settings,
		log:        logger.NewStyledLogger("Release"),
	}, nil
}

// Run executes the pipeline in the given mode.
func (p *Pipeline) Run(mode Mode) (*Result, error) {
	doc, err := manifest.Load(p.Settings.ManifestAbs())
	if err != nil {
		return nil, err
	}
	current, err := doc.Version()
	if err != nil {
		return nil, err
	}
	p.log.Info("Manifest loaded", "manifest", p.Settings.ManifestPath, "version", current)

	// Version resolution and reconciliation. Build mode trusts the manifest
	// verbatim and performs no mutation at all.
	final := current
	var justEstablished *semver.Version
	if mode == ModeBump || mode == ModeRelease {
		clean, err := p.Repo.IsClean()
		if err != nil {
			return nil, err
		}
		if !clean {
			return nil, ErrDirtyWorkTree
		}

		candidate, err := version.ResolveCandidate(p.History, current, p.Classifier.IsAdministrative, p.Settings.FallbackPatchCount)
		if err != nil {
			return nil, fmt.Errorf("resolve candidate version: %w", err)
		}
		p.log.Info("Candidate version resolved", "version", candidate)

		decision := version.Reconcile(current, candidate)
		final = decision.Version
		if decision.ShouldCommit {
			justEstablished = decision.Version
		} else {
			p.log.Info("Manifest version kept", "version", final)
		}
	}

	// The changelog is assembled from committed history before the bump
	// commit exists, so the unreleased interval carries this release's
	// commits under the final version.
	points, err := changelog.BuildTimeline(p.History)
	if err != nil {
		return nil, fmt.Errorf("build version timeline: %w", err)
	}
	assembler := &changelog.Assembler{Source: p.History, Classifier: p.Classifier}
	sections, err := assembler.Assemble(points, final, justEstablished)
	if err != nil {
		return nil, fmt.Errorf("assemble changelog: %w", err)
	}
	changelogText := changelog.Render(sections, p.Classifier.Order())

	if justEstablished != nil {
		if err := p.recordBump(doc, justEstablished); err != nil {
			return nil, err
		}
	}

	outDir := filepath.Join(p.Settings.RepoPath, p.Settings.OutputDir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	changelogPath := filepath.Join(outDir, p.Settings.ChangelogName)
	if err := os.WriteFile(changelogPath, []byte(changelogText), 0644); err != nil {
		return nil, fmt.Errorf("write changelog: %w", err)
	}
	p.log.Info("Changelog written", "path", changelogPath, "sections", len(sections))

	result := &Result{
		Version:       final,
		Bumped:        justEstablished != nil,
		ChangelogPath: changelogPath,
	}

	if mode == ModeBuild || mode == ModeRelease {
		archivePath, err := p.Package(doc.Name(), final, changelogText)
		if err != nil {
			return nil, err
		}
		result.ArchivePath = archivePath
	}

	if mode == ModeRelease {
		if err := p.tag(final); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// recordBump writes the adopted version into the manifest and records it as a
// single-file commit pushed to the remote. Any failure here is fatal: the
// release must not proceed with an unrecorded version bump. The manifest edit
// is left on disk for manual resolution.
func (p *Pipeline) recordBump(doc *manifest.Document, v *semver.Version) error {
	if err := doc.SetVersion(v); err != nil {
		return err
	}

	message := changelog.BumpCommitMessage(v)

	if err := p.Repo.Add(p.Settings.ManifestPath); err != nil {
		p.log.Error("Staging the manifest failed", "error", err,
			"hint", fmt.Sprintf("run 'git add %s' and commit manually", p.Settings.ManifestPath))
		return err
	}
	if err := p.Repo.Commit(message); err != nil {
		p.log.Error("Version bump commit failed", "error", err,
			"hint", fmt.Sprintf("commit the manifest with message %q manually", message))
		return err
	}
	if err := p.Repo.Push(p.Settings.Remote, "HEAD"); err != nil {
		p.log.Error("Push failed", "error", err,
			"hint", fmt.Sprintf("run 'git push %s HEAD' after resolving", p.Settings.Remote))
		return err
	}

	p.log.Info("Version bump recorded", "version", v, "remote", p.Settings.Remote)
	return nil
}

// tag creates and pushes the v{version} release tag. An already-existing tag
// is treated as a re-run of a finished release, not an error.
func (p *Pipeline) tag(v *semver.Version) error {
	name := "v" + v.String()

	if existing, err := p.Repo.ListTags("-v:refname"); err == nil {
		for _, t := range existing {
			if t == name {
				p.log.Warn("Tag already exists, skipping tag creation", "tag", name)
				return nil
			}
		}
	}

	if err := p.Repo.Tag(name, name); err != nil {
		p.log.Error("Tagging failed", "error", err,
			"hint", fmt.Sprintf("run 'git tag -a %s' after resolving", name))
		return err
	}
	if err := p.Repo.PushTag(p.Settings.Remote, name); err != nil {
		p.log.Error("Tag push failed", "error", err,
			"hint", fmt.Sprintf("run 'git push %s %s' after resolving", p.Settings.Remote, name))
		return err
	}

	p.log.Info("Release tagged", "tag", name, "remote", p.Settings.Remote)
	return nil
}
