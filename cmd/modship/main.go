// Package main provides the modship CLI entry point.
// modship derives the next semantic version from git history, regenerates the
// changelog, and builds, zips, and tags mod releases.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"modship/internal/buildinfo"
	"modship/internal/config"
	"modship/internal/logger"
	"modship/internal/release"
)

var (
	logLevel string
	logFile  string
	repoPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modship",
	Short: "modship - mod packaging and release automation",
	Long: `modship automates mod releases: it derives the next semantic version from
git history, reconciles it with the tracked manifest, reconstructs the
categorized changelog, and builds, zips, and tags the release.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// buildCmd is the read-only CI mode: the manifest version is trusted verbatim
// and nothing in the repository is mutated.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build and zip using the manifest version as-is (CI mode)",
	Long: `Build and package the mod without touching the repository. The version is
read verbatim from the manifest; no commit, push, or tag is performed.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runPipeline(release.ModeBuild)
	},
}

// bumpCmd resolves and records the next version without packaging.
var bumpCmd = &cobra.Command{
	Use:   "bump",
	Short: "Resolve the next version and record it in the manifest",
	Long: `Resolve the next version for the current series from git history, reconcile
it with the manifest, and when it moves forward, write, commit, and push the
manifest update.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runPipeline(release.ModeBump)
	},
}

// releaseCmd is the full pipeline: bump, changelog, build, zip, tag.
var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Run the full release: bump, changelog, build, zip, and tag",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runPipeline(release.ModeRelease)
	},
}

// changelogCmd regenerates the changelog artifact only.
var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Regenerate the changelog from manifest history",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runPipeline(release.ModeChangelog)
	},
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(buildinfo.GetFormattedVersion())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&repoPath, "repo", ".", "Repository root to operate on")
	rootCmd.PersistentFlags().String("manifest", "mod.json", "Tracked manifest path, relative to the repo root")
	rootCmd.PersistentFlags().String("remote", "origin", "Remote for pushed commits and tags")

	// Bind flags to viper so config file and MODSHIP_* env vars layer underneath
	for _, name := range []string{"repo", "manifest", "remote"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(bumpCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(changelogCmd)
	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	if err := logger.Configure(logLevel, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

func runPipeline(mode release.Mode) error {
	settings, err := config.Load(viper.GetViper(), repoPath)
	if err != nil {
		return err
	}

	pipeline, err := release.New(settings)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(mode)
	if err != nil {
		return err
	}

	logger.Info("Run complete", "version", result.Version, "bumped", result.Bumped)
	if result.ArchivePath != "" {
		fmt.Println(result.ArchivePath)
	}
	return nil
}
