package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/compozy/changelog/internal/config"
	"github.com/compozy/changelog/internal/domain"
	"github.com/compozy/changelog/internal/service"
	"github.com/compozy/changelog/internal/usecase"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// parseRelease parses "version" or "version@RFC3339-timestamp".
func parseRelease(raw, tagPrefix string) (domain.Release, error) {
	version, stamp, hasStamp := strings.Cut(strings.TrimSpace(raw), "@")
	if version == "" {
		return domain.Release{}, fmt.Errorf("empty release in %q", raw)
	}
	release := domain.Release{Version: version, TagPrefix: tagPrefix}
	if hasStamp {
		ts, err := time.Parse(time.RFC3339, stamp)
		if err != nil {
			return domain.Release{}, fmt.Errorf("invalid release timestamp in %q: %w", raw, err)
		}
		release.ReleaseTimestamp = &ts
	}
	return release, nil
}

// loadUpgrade reads an upgrade descriptor from a YAML or JSON file.
func loadUpgrade(fs afero.Fs, path string) (*domain.Upgrade, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upgrade file: %w", err)
	}
	var upgrade domain.Upgrade
	if err := yaml.Unmarshal(data, &upgrade); err != nil {
		return nil, fmt.Errorf("failed to parse upgrade file: %w", err)
	}
	return &upgrade, nil
}

// NewChangelogCmd creates the changelog command
func NewChangelogCmd(c *container) *cobra.Command {
	var (
		upgrade   domain.Upgrade
		releases  []string
		tagPrefix string
		input     string
		format    string
		cacheKind string
	)
	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Print the changelog of a dependency upgrade",
		Long: `Print the changelog of a dependency upgrade.

Releases between --current-version (exclusive) and --new-version (inclusive)
are listed newest first with a link comparing each one to its predecessor.
Release notes come from the platform release list when it has one, otherwise
from the changelog file of the source repository.

The upgrade can also be read from a YAML or JSON file with --input; flags
given on the command line override the file.`,
		Example: `  compozy-changelog changelog --platform azure \
    --source-url https://dev.azure.com/acme/web/_git/ui-kit \
    --package-name ui-kit --current-version 1.0.0 --new-version 2.0.0 \
    --release 1.0.0 --release 1.1.0@2024-02-01T00:00:00Z --release 2.0.0`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := &upgrade
			if input != "" {
				fromFile, err := loadUpgrade(c.fsRepo, input)
				if err != nil {
					return err
				}
				mergeUpgradeFlags(cmd, fromFile, &upgrade)
				target = fromFile
			}
			for _, raw := range releases {
				release, err := parseRelease(raw, tagPrefix)
				if err != nil {
					return err
				}
				target.Releases = append(target.Releases, release)
			}
			cache, err := c.newCache(cacheKind)
			if err != nil {
				return err
			}
			source, err := c.newSource(cmd.Context(), target.Platform, target.SourceURL)
			if err != nil {
				return err
			}
			warn := color.New(color.FgYellow).SprintFunc()
			if strings.EqualFold(target.Platform, service.PlatformAzure) &&
				errors.Is(c.cfg.ValidateForAzureOperations(), config.ErrAzureTokenRequired) {
				fmt.Fprintln(cmd.ErrOrStderr(), warn("warning: AZURE_DEVOPS_TOKEN is not set, changelog files will not be read"))
			}
			result, err := c.newOrchestrator(cache).GetChangeLog(cmd.Context(), target, source)
			if err != nil {
				return err
			}
			if result == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), warn("warning: fewer than two valid releases, no changelog produced"))
				return nil
			}
			out, err := (&usecase.RenderChangelogUseCase{}).Execute(result, format)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&upgrade.Platform, "platform", service.PlatformAzure,
		fmt.Sprintf("Source platform (%s)", strings.Join(service.PlatformTypes(), ", ")))
	flags.StringVar(&upgrade.Versioning, "versioning", service.VersioningSemver,
		fmt.Sprintf("Versioning scheme (%s, %s)", service.VersioningSemver, service.VersioningLoose))
	flags.StringVar(&upgrade.CurrentVersion, "current-version", "", "Version currently in use")
	flags.StringVar(&upgrade.NewVersion, "new-version", "", "Version being upgraded to")
	flags.StringVar(&upgrade.SourceURL, "source-url", "", "URL of the source repository")
	flags.StringVar(&upgrade.SourceDirectory, "source-directory", "", "Directory of the package inside the repository")
	flags.StringVar(&upgrade.PackageName, "package-name", "", "Package name")
	flags.StringVar(&upgrade.DepName, "dep-name", "", "Dependency name")
	flags.StringVar(&upgrade.Manager, "manager", "", "Package manager")
	flags.StringArrayVar(&releases, "release", nil, "Known release as version[@RFC3339 timestamp], repeatable")
	flags.StringVar(&tagPrefix, "tag-prefix", "", "Tag prefix of the releases given with --release")
	flags.StringVarP(&input, "input", "i", "", "Read the upgrade from a YAML or JSON file")
	flags.StringVarP(&format, "format", "f", usecase.FormatMarkdown,
		fmt.Sprintf("Output format (%s, %s, %s)", usecase.FormatMarkdown, usecase.FormatJSON, usecase.FormatYAML))
	flags.StringVar(&cacheKind, "cache", cacheKindMemory,
		fmt.Sprintf("Release cache (%s, %s)", cacheKindMemory, cacheKindFile))
	return cmd
}

// mergeUpgradeFlags copies explicitly set flags over the upgrade read from a file.
func mergeUpgradeFlags(cmd *cobra.Command, dst, flags *domain.Upgrade) {
	set := func(name string, target *string, value string) {
		if cmd.Flags().Changed(name) || *target == "" {
			*target = value
		}
	}
	set("platform", &dst.Platform, flags.Platform)
	set("versioning", &dst.Versioning, flags.Versioning)
	set("current-version", &dst.CurrentVersion, flags.CurrentVersion)
	set("new-version", &dst.NewVersion, flags.NewVersion)
	set("source-url", &dst.SourceURL, flags.SourceURL)
	set("source-directory", &dst.SourceDirectory, flags.SourceDirectory)
	set("package-name", &dst.PackageName, flags.PackageName)
	set("dep-name", &dst.DepName, flags.DepName)
	set("manager", &dst.Manager, flags.Manager)
}
