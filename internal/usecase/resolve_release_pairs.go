package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/compozy/changelog/internal/domain"
	"github.com/compozy/changelog/internal/repository"
	"github.com/compozy/changelog/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultReleaseCacheTTL is how long a comparison record stays cached.
const DefaultReleaseCacheTTL = time.Minute

// ResolveReleasePairsUseCase selects the releases inside an upgrade range and
// builds, or loads from cache, one comparison record per selected release.
type ResolveReleasePairsUseCase struct {
	Cache    repository.ReleaseCache
	Platform service.PlatformService
	// TTL of cache writes; zero means DefaultReleaseCacheTTL.
	TTL time.Duration
	// Concurrency above one looks up pairs in parallel.
	Concurrency int
	Logger      *zap.Logger
}

// releasePair is two adjacent releases in ascending order.
type releasePair struct {
	prev domain.Release
	next domain.Release
}

// Execute returns the in-range records newest first. It returns nil when fewer
// than two releases are valid versions, and an empty slice when none of the
// pairs falls inside (currentVersion, newVersion].
func (uc *ResolveReleasePairsUseCase) Execute(
	ctx context.Context,
	currentVersion, newVersion string,
	versioning service.VersioningService,
	releases []domain.Release,
	sourceURL, tagPrefix string,
	cacheKey CacheKeyFunc,
) ([]domain.ChangeLogRelease, error) {
	logger := uc.logger()
	valid := make([]domain.Release, 0, len(releases))
	for _, r := range releases {
		if versioning.IsVersion(r.Version) {
			valid = append(valid, r)
		}
	}
	slices.SortStableFunc(valid, func(a, b domain.Release) int {
		return versioning.SortVersions(a.Version, b.Version)
	})
	if len(valid) < 2 {
		logger.Debug("not enough valid releases to build a changelog", zap.Int("valid", len(valid)))
		return nil, nil
	}
	pairs := make([]releasePair, 0, len(valid)-1)
	for i := 1; i < len(valid); i++ {
		next := valid[i]
		if versioning.IsGreaterThan(next.Version, currentVersion) &&
			!versioning.IsGreaterThan(next.Version, newVersion) {
			pairs = append(pairs, releasePair{prev: valid[i-1], next: next})
		}
	}
	records := make([]domain.ChangeLogRelease, len(pairs))
	resolve := func(ctx context.Context, i int) error {
		record, err := uc.resolvePair(ctx, pairs[i], sourceURL, tagPrefix, cacheKey)
		if err != nil {
			return err
		}
		// slot 0 holds the newest pair
		records[len(pairs)-1-i] = *record
		return nil
	}
	if uc.Concurrency > 1 && len(pairs) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(uc.Concurrency)
		for i := range pairs {
			g.Go(func() error { return resolve(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return records, nil
	}
	for i := range pairs {
		if err := resolve(ctx, i); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// resolvePair reads the cached record of a pair or builds and stores a new one.
func (uc *ResolveReleasePairsUseCase) resolvePair(
	ctx context.Context,
	pair releasePair,
	sourceURL, tagPrefix string,
	cacheKey CacheKeyFunc,
) (*domain.ChangeLogRelease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	namespace := uc.Platform.CacheNamespace()
	key := cacheKey(pair.prev.Version, pair.next.Version)
	cached, ok, err := uc.Cache.Get(ctx, namespace, key)
	if err != nil {
		return nil, err
	}
	if ok {
		var record domain.ChangeLogRelease
		if err := json.Unmarshal(cached, &record); err == nil {
			if record.Changes == nil {
				record.Changes = []domain.ChangeLogChange{}
			}
			return &record, nil
		}
		uc.logger().Debug("ignoring undecodable cache entry", zap.String("key", key))
	}
	// each side of the comparison is tagged under its own release's prefix
	prevPrefix := releaseTagPrefix(pair.prev, tagPrefix)
	nextPrefix := releaseTagPrefix(pair.next, tagPrefix)
	record := &domain.ChangeLogRelease{
		Version:   pair.next.Version,
		Date:      pair.next.ReleaseTimestamp,
		TagPrefix: nextPrefix,
		Changes:   []domain.ChangeLogChange{},
		Compare: domain.ChangeLogCompare{
			URL: uc.Platform.CompareURL(
				sourceURL,
				domain.TagName(prevPrefix, pair.prev.Version),
				domain.TagName(nextPrefix, pair.next.Version),
			),
		},
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode comparison record: %w", err)
	}
	if err := uc.Cache.Set(ctx, namespace, key, data, uc.ttl()); err != nil {
		return nil, err
	}
	return record, nil
}

func releaseTagPrefix(r domain.Release, fallback string) string {
	if r.TagPrefix != "" {
		return r.TagPrefix
	}
	return fallback
}

func (uc *ResolveReleasePairsUseCase) ttl() time.Duration {
	if uc.TTL > 0 {
		return uc.TTL
	}
	return DefaultReleaseCacheTTL
}

func (uc *ResolveReleasePairsUseCase) logger() *zap.Logger {
	if uc.Logger == nil {
		return zap.NewNop()
	}
	return uc.Logger
}
