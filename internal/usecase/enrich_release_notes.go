package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/changelog/internal/domain"
	"github.com/compozy/changelog/internal/repository"
	"go.uber.org/zap"
)

// EnrichReleaseNotesUseCase attaches human-authored notes to every record of a result.
type EnrichReleaseNotesUseCase struct {
	Locator *LocateChangelogFileUseCase
	Logger  *zap.Logger
}

// Execute fills Changes of each record in place, preferring the platform
// release list and falling back to the changelog file of the repository.
// Changes are replaced, not appended, so running it twice is harmless.
func (uc *EnrichReleaseNotesUseCase) Execute(
	ctx context.Context,
	result *domain.ChangeLogResult,
	source repository.SourceRepository,
) (*domain.ChangeLogResult, error) {
	if result == nil {
		return nil, nil
	}
	if len(result.Versions) == 0 {
		return result, nil
	}
	logger := uc.logger().With(zap.String("repository", result.Project.Repository))
	notes, err := source.GetReleaseList(ctx, result.Project.APIBaseURL, result.Project.Repository)
	if err != nil {
		return nil, fmt.Errorf("failed to get release list: %w", err)
	}
	if len(notes) == 0 {
		logger.Debug("release list is empty")
	}
	var pending []int
	for i := range result.Versions {
		record := &result.Versions[i]
		record.Changes = []domain.ChangeLogChange{}
		note := findReleaseNote(notes, record)
		if note == nil {
			pending = append(pending, i)
			continue
		}
		record.Changes = append(record.Changes, domain.ChangeLogChange{
			Title:  note.Name,
			Body:   note.Body,
			URL:    note.URL,
			Source: domain.NotesSourceReleaseList,
		})
		if record.Date == nil {
			record.Date = note.PublishedAt
		}
	}
	if len(pending) == 0 {
		return result, nil
	}
	file, err := uc.locator().Execute(
		ctx, source, result.Project.Repository, result.Project.SourceDirectory, result.Project.TagPrefix,
	)
	if err != nil {
		if errors.Is(err, repository.ErrSourceUnavailable) {
			logger.Debug("changelog file lookup unavailable", zap.Error(err))
			return result, nil
		}
		return nil, err
	}
	if file == nil {
		return result, nil
	}
	for _, i := range pending {
		record := &result.Versions[i]
		section, ok := ExtractVersionSection(file.ChangelogMd, record.Version)
		if !ok || section == "" {
			logger.Debug("no changelog section for version",
				zap.String("version", record.Version),
				zap.String("file", file.ChangelogFile),
			)
			continue
		}
		record.Changes = append(record.Changes, domain.ChangeLogChange{
			Title:  file.ChangelogFile,
			Body:   section,
			Source: domain.NotesSourceChangelog,
		})
	}
	return result, nil
}

// findReleaseNote matches by version or by tag name, exactly. Notes without
// a body carry nothing to attach.
func findReleaseNote(notes []domain.ReleaseNote, record *domain.ChangeLogRelease) *domain.ReleaseNote {
	tag := domain.TagName(record.TagPrefix, record.Version)
	for i := range notes {
		n := &notes[i]
		if n.Body == "" {
			continue
		}
		if n.Version == record.Version || n.Tag == tag {
			return n
		}
	}
	return nil
}

func (uc *EnrichReleaseNotesUseCase) locator() *LocateChangelogFileUseCase {
	if uc.Locator == nil {
		return &LocateChangelogFileUseCase{Logger: uc.Logger}
	}
	return uc.Locator
}

func (uc *EnrichReleaseNotesUseCase) logger() *zap.Logger {
	if uc.Logger == nil {
		return zap.NewNop()
	}
	return uc.Logger
}
