package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/changelog/internal/domain"
	"github.com/compozy/changelog/internal/repository"
	"github.com/compozy/changelog/internal/service"
	"github.com/compozy/changelog/internal/usecase"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChangelogConfig tunes the changelog pipeline.
type ChangelogConfig struct {
	CacheTTL    time.Duration
	Concurrency int
}

// ChangelogOrchestrator runs the changelog pipeline for one upgrade at a time.
// It is safe for concurrent use; invocations share only the release cache.
type ChangelogOrchestrator struct {
	cache  repository.ReleaseCache
	logger *zap.Logger
	cfg    ChangelogConfig
}

// NewChangelogOrchestrator creates a new changelog orchestrator.
func NewChangelogOrchestrator(
	cache repository.ReleaseCache,
	logger *zap.Logger,
	cfg ChangelogConfig,
) *ChangelogOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &ChangelogOrchestrator{cache: cache, logger: logger, cfg: cfg}
}

// GetChangeLog builds the changelog of upgrade. A nil result with a nil error
// means no changelog can be produced, while a result with no versions means
// no release falls inside the upgrade range. A nil source behaves like a
// platform without credentials.
func (o *ChangelogOrchestrator) GetChangeLog(
	ctx context.Context,
	upgrade *domain.Upgrade,
	source repository.SourceRepository,
) (*domain.ChangeLogResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultPipelineTimeout)
	defer cancel()
	if err := ValidateUpgrade(upgrade); err != nil {
		return nil, err
	}
	logger := o.logger.With(
		zap.String("correlation_id", uuid.NewString()),
		zap.String("dep", depIdentity(upgrade)),
		zap.String("current_version", upgrade.CurrentVersion),
		zap.String("new_version", upgrade.NewVersion),
	)
	versioning, err := service.NewVersioningService(upgrade.Versioning)
	if err != nil {
		return nil, err
	}
	platform, err := service.NewPlatformService(upgrade.Platform)
	if err != nil {
		return nil, err
	}
	if _, err := usecase.ParseSourceURL(upgrade.SourceURL); err != nil {
		return nil, err
	}
	if len(upgrade.Releases) == 0 {
		logger.Debug("no releases supplied")
		return nil, nil
	}
	if source == nil {
		source = repository.NewNoopSourceRepository(platform.Type())
	}
	tagPrefix := domain.FirstTagPrefix(upgrade.Releases)
	resolver := &usecase.ResolveReleasePairsUseCase{
		Cache:       o.cache,
		Platform:    platform,
		TTL:         o.cfg.CacheTTL,
		Concurrency: o.cfg.Concurrency,
		Logger:      logger,
	}
	versions, err := resolver.Execute(
		ctx,
		upgrade.CurrentVersion,
		upgrade.NewVersion,
		versioning,
		upgrade.Releases,
		upgrade.SourceURL,
		tagPrefix,
		usecase.NewCacheKeyFunc(upgrade.SourceURL, upgrade.PackageName, upgrade.Manager, upgrade.DepName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve releases: %w", err)
	}
	if versions == nil {
		logger.Debug("cannot produce a changelog")
		return nil, nil
	}
	assembler := &usecase.AssembleResultUseCase{}
	result, err := assembler.Execute(upgrade, platform, tagPrefix, versions)
	if err != nil {
		return nil, err
	}
	enricher := &usecase.EnrichReleaseNotesUseCase{
		Locator: &usecase.LocateChangelogFileUseCase{Logger: logger},
		Logger:  logger,
	}
	result, err = enricher.Execute(ctx, result, source)
	if err != nil {
		return nil, fmt.Errorf("failed to enrich release notes: %w", err)
	}
	logger.Debug("changelog resolved", zap.Int("versions", len(result.Versions)))
	return result, nil
}

func depIdentity(upgrade *domain.Upgrade) string {
	if upgrade.PackageName != "" {
		return upgrade.PackageName
	}
	return upgrade.DepName
}
