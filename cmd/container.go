package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/compozy/changelog/internal/config"
	"github.com/compozy/changelog/internal/orchestrator"
	"github.com/compozy/changelog/internal/repository"
	"github.com/compozy/changelog/internal/service"
	"github.com/compozy/changelog/internal/usecase"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	cacheKindMemory = "memory"
	cacheKindFile   = "file"
)

// container holds all the dependencies for the application.
type container struct {
	cfg    *config.Config
	logger *zap.Logger
	fsRepo repository.FileSystemRepository
}

// newContainer creates a new container with all the dependencies.
func newContainer() (*container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return &container{
		cfg:    cfg,
		logger: logger,
		fsRepo: repository.FileSystemRepository(afero.NewOsFs()),
	}, nil
}

// newLogger builds the process logger. Logs go to stderr so rendered
// changelogs on stdout stay machine readable.
func newLogger(level, format string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(parsed)
	zcfg.Sampling = nil
	if format != config.LogFormatJSON {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return zcfg.Build()
}

// newCache returns the release cache of the given kind.
func (c *container) newCache(kind string) (repository.ReleaseCache, error) {
	switch strings.ToLower(kind) {
	case "", cacheKindMemory:
		return repository.NewMemoryReleaseCache(), nil
	case cacheKindFile:
		return repository.NewFileReleaseCache(c.fsRepo, c.cfg.CacheDir), nil
	default:
		return nil, fmt.Errorf("unknown cache kind: %s (expected %s or %s)", kind, cacheKindMemory, cacheKindFile)
	}
}

// newOrchestrator wires the changelog pipeline around cache.
func (c *container) newOrchestrator(cache repository.ReleaseCache) *orchestrator.ChangelogOrchestrator {
	return orchestrator.NewChangelogOrchestrator(cache, c.logger, orchestrator.ChangelogConfig{
		CacheTTL:    c.cfg.CacheTTL,
		Concurrency: c.cfg.Concurrency,
	})
}

// newSource returns the source client for platform. Azure without a token
// gets a source that cannot read trees.
func (c *container) newSource(ctx context.Context, platform, sourceURL string) (repository.SourceRepository, error) {
	switch strings.ToLower(platform) {
	case service.PlatformAzure:
		if err := c.cfg.ValidateForAzureOperations(); err != nil {
			if errors.Is(err, config.ErrAzureTokenRequired) {
				return repository.NewNoopSourceRepository(service.PlatformAzure), nil
			}
			return nil, err
		}
		endpoint, err := c.cfg.AzureEndpointFor(sourceURL)
		if err != nil {
			return nil, err
		}
		return repository.NewAzureSourceRepository(ctx, endpoint, c.cfg.AzureToken)
	case service.PlatformGithub:
		u, err := usecase.ParseSourceURL(sourceURL)
		if err != nil {
			return nil, err
		}
		githubPlatform, err := service.NewPlatformService(service.PlatformGithub)
		if err != nil {
			return nil, err
		}
		return repository.NewGithubSourceRepository(c.cfg.GithubToken, githubPlatform.Locate(u).APIBaseURL)
	case service.PlatformGit:
		return repository.NewGitSourceRepository(sourceURL, c.cfg.GitCredential()), nil
	default:
		return nil, fmt.Errorf("%w: %s", service.ErrUnknownPlatform, platform)
	}
}

// InitCommands initializes all commands with their dependencies
func InitCommands() error {
	c, err := newContainer()
	if err != nil {
		return err
	}
	rootCmd.AddCommand(NewChangelogCmd(c))
	rootCmd.AddCommand(newVersionCmd())
	return nil
}
