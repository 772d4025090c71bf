// Package config loads modship settings with layered precedence:
// defaults < .modship.yaml < .env file < MODSHIP_* environment variables < CLI flags.
// Flag binding happens in cmd; this package owns everything below it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"modship/internal/logger"
)

// Settings collects every knob the pipeline reads.
type Settings struct {
	RepoPath           string            `mapstructure:"repo"`                 // Repository root
	ManifestPath       string            `mapstructure:"manifest"`             // Tracked manifest, relative to the repo root
	Remote             string            `mapstructure:"remote"`               // Push target for commits and tags
	ChangelogName      string            `mapstructure:"changelog"`            // Changelog artifact file name
	StagingDir         string            `mapstructure:"staging_dir"`          // Mod tree copied here before zipping
	OutputDir          string            `mapstructure:"output_dir"`           // Zip and generated artifacts land here
	BuildCommand       string            `mapstructure:"build_command"`        // External build invocation, empty to skip
	FallbackPatchCount int               `mapstructure:"fallback_patch_count"` // Patch number when a series has no base commit
	CategoryOverrides  map[string]string `mapstructure:"categories"`           // commit type -> category display name
}

// ManifestAbs returns the manifest path anchored at the repository root.
func (s Settings) ManifestAbs() string {
	if filepath.IsAbs(s.ManifestPath) {
		return s.ManifestPath
	}
	return filepath.Join(s.RepoPath, s.ManifestPath)
}

// Load resolves settings for the given repository using the shared viper
// instance the CLI flags are bound to.
func Load(v *viper.Viper, repoPath string) (Settings, error) {
	if v == nil {
		v = viper.GetViper()
	}

	// A local .env participates in the environment layer below real env vars
	envPath := filepath.Join(repoPath, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			logger.Warn("Cannot load .env file", "path", envPath, "error", err)
		}
	}

	v.SetDefault("repo", repoPath)
	v.SetDefault("manifest", "mod.json")
	v.SetDefault("remote", "origin")
	v.SetDefault("changelog", "CHANGELOG.txt")
	v.SetDefault("staging_dir", "build/staging")
	v.SetDefault("output_dir", "build/out")
	v.SetDefault("build_command", "")
	v.SetDefault("fallback_patch_count", 0)

	v.SetConfigName(".modship")
	v.SetConfigType("yaml")
	v.AddConfigPath(repoPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		logger.Debug("Loaded config file", "path", v.ConfigFileUsed())
	}

	v.SetEnvPrefix("MODSHIP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	if settings.RepoPath == "" {
		settings.RepoPath = repoPath
	}
	settings.RepoPath = filepath.Clean(settings.RepoPath)

	return settings, nil
}
