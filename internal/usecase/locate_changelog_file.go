package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/compozy/changelog/internal/domain"
	"github.com/compozy/changelog/internal/repository"
	"go.uber.org/zap"
)

var changelogFileName = regexp.MustCompile(
	`(?i)^(change[-_ ]?log|changes|history|news|releases?|release[-_ ]notes|updates)` +
		`(\.(md|markdown|mdown|mkdn|mkd|rst|txt|adoc|asciidoc))?$`,
)

// IsChangelogPath reports whether the base name of p looks like a changelog document.
func IsChangelogPath(p string) bool {
	return changelogFileName.MatchString(path.Base(p))
}

// LocateChangelogFileUseCase finds and reads the changelog document of a repository.
type LocateChangelogFileUseCase struct {
	Logger *zap.Logger
}

// Execute lists the whole tree of repository, selects one changelog file and
// returns its content. A nil file with a nil error means none was found.
func (uc *LocateChangelogFileUseCase) Execute(
	ctx context.Context,
	source repository.SourceRepository,
	repo, sourceDirectory, tagPrefix string,
) (*domain.ChangeLogFile, error) {
	projectID, repoID := repository.SplitRepository(repo)
	root, err := source.GetTreeEntry(ctx, repoID, "/", projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root tree of %s: %w", repo, err)
	}
	entries, err := source.GetTree(ctx, repoID, root.ObjectID, projectID, true)
	if errors.Is(err, repository.ErrTreeTruncated) {
		uc.logger().Debug("tree listing truncated, changelog file may be missed",
			zap.String("repository", repo), zap.Int("entries", len(entries)))
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tree of %s: %w", repo, err)
	}
	blobs := make([]repository.TreeEntry, 0, len(entries))
	for _, e := range entries {
		if e.ObjectType == repository.ObjectTypeBlob {
			blobs = append(blobs, e)
		}
	}
	slices.SortStableFunc(blobs, func(a, b repository.TreeEntry) int {
		return strings.Compare(a.RelativePath, b.RelativePath)
	})
	selected := uc.Select(blobs, sourceDirectory, tagPrefix)
	if selected == nil {
		uc.logger().Debug("no changelog file found", zap.String("repository", repo))
		return nil, nil
	}
	body, err := source.GetBlobContent(ctx, repoID, selected.ObjectID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", selected.RelativePath, err)
	}
	defer body.Close()
	content, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", selected.RelativePath, err)
	}
	return &domain.ChangeLogFile{
		ChangelogFile: selected.RelativePath,
		ChangelogMd:   strings.ToValidUTF8(string(content), "\uFFFD"),
	}, nil
}

// Select picks the changelog file from blobs, which must be in tree order.
// Files under sourceDirectory win, then CHANGELOG.<tagPrefix>.md at the
// root, then any changelog-like file.
func (uc *LocateChangelogFileUseCase) Select(
	blobs []repository.TreeEntry,
	sourceDirectory, tagPrefix string,
) *repository.TreeEntry {
	if dir := strings.Trim(sourceDirectory, "/"); dir != "" {
		var scoped []repository.TreeEntry
		for _, b := range blobs {
			rel, ok := strings.CutPrefix(strings.TrimPrefix(b.RelativePath, "/"), dir+"/")
			if ok && IsChangelogPath(rel) {
				scoped = append(scoped, b)
			}
		}
		if len(scoped) > 0 {
			return uc.first(scoped)
		}
	}
	if tagPrefix != "" {
		want := "CHANGELOG." + tagPrefix + ".md"
		var exact []repository.TreeEntry
		for _, b := range blobs {
			if strings.TrimPrefix(b.RelativePath, "/") == want {
				exact = append(exact, b)
			}
		}
		if len(exact) > 0 {
			return uc.first(exact)
		}
	}
	var matches []repository.TreeEntry
	for _, b := range blobs {
		if IsChangelogPath(b.RelativePath) {
			matches = append(matches, b)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	return uc.first(matches)
}

func (uc *LocateChangelogFileUseCase) first(candidates []repository.TreeEntry) *repository.TreeEntry {
	if len(candidates) > 1 {
		paths := make([]string, 0, len(candidates))
		for _, c := range candidates {
			paths = append(paths, c.RelativePath)
		}
		uc.logger().Debug("multiple changelog files found, using the first",
			zap.String("selected", candidates[0].RelativePath),
			zap.Strings("candidates", paths),
		)
	}
	selected := candidates[0]
	return &selected
}

func (uc *LocateChangelogFileUseCase) logger() *zap.Logger {
	if uc.Logger == nil {
		return zap.NewNop()
	}
	return uc.Logger
}
