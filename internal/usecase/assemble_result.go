package usecase

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/compozy/changelog/internal/domain"
	"github.com/compozy/changelog/internal/service"
)

// ErrInvalidSourceURL is returned for source URLs without scheme or host.
var ErrInvalidSourceURL = errors.New("invalid source URL")

// ParseSourceURL parses sourceURL and requires an absolute URL with a host.
func ParseSourceURL(sourceURL string) (*url.URL, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSourceURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no scheme or host", ErrInvalidSourceURL, sourceURL)
	}
	return u, nil
}

// AssembleResultUseCase builds the changelog result of an upgrade.
type AssembleResultUseCase struct{}

// Execute builds the project descriptor from the upgrade and platform and
// wraps the records. Records without a tag prefix inherit tagPrefix.
func (uc *AssembleResultUseCase) Execute(
	upgrade *domain.Upgrade,
	platform service.PlatformService,
	tagPrefix string,
	versions []domain.ChangeLogRelease,
) (*domain.ChangeLogResult, error) {
	u, err := ParseSourceURL(upgrade.SourceURL)
	if err != nil {
		return nil, err
	}
	location := platform.Locate(u)
	if versions == nil {
		versions = []domain.ChangeLogRelease{}
	}
	for i := range versions {
		if versions[i].TagPrefix == "" {
			versions[i].TagPrefix = tagPrefix
		}
	}
	return &domain.ChangeLogResult{
		Project: domain.ProjectDescriptor{
			APIBaseURL:      location.APIBaseURL,
			BaseURL:         location.BaseURL,
			Type:            platform.Type(),
			Repository:      location.Repository,
			SourceURL:       upgrade.SourceURL,
			SourceDirectory: upgrade.SourceDirectory,
			PackageName:     upgrade.PackageName,
			DepName:         upgrade.DepName,
			TagPrefix:       tagPrefix,
		},
		Versions: versions,
	}, nil
}
