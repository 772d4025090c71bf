package release

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"modship/internal/archive"
)

// Package runs the configured build command, places the manifest and changelog
// next to the build output in the staging directory, and zips the result as
// {name}-{version}.zip in the output directory.
func (p *Pipeline) Package(name string, v *semver.Version, changelogText string) (string, error) {
	if name == "" {
		name = "mod"
	}

	if p.Settings.BuildCommand != "" {
		if err := p.runBuild(); err != nil {
			return "", err
		}
	}

	staging := filepath.Join(p.Settings.RepoPath, p.Settings.StagingDir)
	if err := os.MkdirAll(staging, 0755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	manifestData, err := os.ReadFile(p.Settings.ManifestAbs())
	if err != nil {
		return "", fmt.Errorf("read manifest for staging: %w", err)
	}
	manifestName := filepath.Base(p.Settings.ManifestPath)
	if err := os.WriteFile(filepath.Join(staging, manifestName), manifestData, 0644); err != nil {
		return "", fmt.Errorf("stage manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, p.Settings.ChangelogName), []byte(changelogText), 0644); err != nil {
		return "", fmt.Errorf("stage changelog: %w", err)
	}

	outDir := filepath.Join(p.Settings.RepoPath, p.Settings.OutputDir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	archivePath := filepath.Join(outDir, fmt.Sprintf("%s-%s.zip", name, v))
	if err := archive.ZipDir(staging, archivePath); err != nil {
		return "", err
	}

	p.log.Info("Release packaged", "archive", archivePath)
	return archivePath, nil
}

// runBuild invokes the external build command in the repository root. The
// build itself is an external collaborator; modship only cares that it exits zero.
func (p *Pipeline) runBuild() error {
	p.log.Info("Running build command", "command", p.Settings.BuildCommand)

	cmd := exec.Command("sh", "-c", p.Settings.BuildCommand)
	cmd.Dir = p.Settings.RepoPath
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build command failed: %w", err)
	}
	return nil
}
