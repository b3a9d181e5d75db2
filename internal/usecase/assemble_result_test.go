package usecase

import (
	"testing"

	"github.com/compozy/changelog/internal/domain"
	"github.com/compozy/changelog/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSourceURL(t *testing.T) {
	t.Run("Should accept absolute urls", func(t *testing.T) {
		u, err := ParseSourceURL(azureSourceURL)
		require.NoError(t, err)
		assert.Equal(t, "dev.azure.com", u.Host)
	})
	for _, raw := range []string{"", "dev.azure.com/org", "/org/repo", "https://", "::"} {
		t.Run("Should reject "+raw, func(t *testing.T) {
			_, err := ParseSourceURL(raw)
			assert.ErrorIs(t, err, ErrInvalidSourceURL)
		})
	}
}

func TestAssembleResultUseCase_Execute(t *testing.T) {
	uc := &AssembleResultUseCase{}
	upgrade := &domain.Upgrade{
		SourceURL:       azureSourceURL,
		SourceDirectory: "packages/foo",
		PackageName:     "foo",
		DepName:         "Foo",
	}

	t.Run("Should build the azure project descriptor", func(t *testing.T) {
		result, err := uc.Execute(upgrade, mustPlatform(t, service.PlatformAzure), "foo", nil)
		require.NoError(t, err)
		assert.Equal(t, domain.ProjectDescriptor{
			APIBaseURL:      "https://dev.azure.com/_apis/git/",
			BaseURL:         "https://dev.azure.com/",
			Type:            "azure",
			Repository:      "org/project/repo",
			SourceURL:       azureSourceURL,
			SourceDirectory: "packages/foo",
			PackageName:     "foo",
			DepName:         "Foo",
			TagPrefix:       "foo",
		}, result.Project)
		assert.NotNil(t, result.Versions)
		assert.Empty(t, result.Versions)
	})
	t.Run("Should apply the tag prefix to records lacking one", func(t *testing.T) {
		versions := []domain.ChangeLogRelease{{Version: "2.0.0"}, {Version: "1.0.0", TagPrefix: "own"}}
		result, err := uc.Execute(upgrade, mustPlatform(t, service.PlatformAzure), "foo", versions)
		require.NoError(t, err)
		assert.Equal(t, "foo", result.Versions[0].TagPrefix)
		assert.Equal(t, "own", result.Versions[1].TagPrefix)
	})
	t.Run("Should keep the record order", func(t *testing.T) {
		versions := []domain.ChangeLogRelease{{Version: "2.0.0"}, {Version: "1.1.0"}}
		result, err := uc.Execute(upgrade, mustPlatform(t, service.PlatformAzure), "", versions)
		require.NoError(t, err)
		assert.Equal(t, []string{"2.0.0", "1.1.0"}, versionsOf(result.Versions))
	})
	t.Run("Should reject malformed source urls", func(t *testing.T) {
		_, err := uc.Execute(&domain.Upgrade{SourceURL: "not a url"}, mustPlatform(t, service.PlatformAzure), "", nil)
		assert.ErrorIs(t, err, ErrInvalidSourceURL)
	})
}
