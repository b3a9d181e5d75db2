package orchestrator

import (
	"context"
	"io"

	"github.com/compozy/changelog/internal/domain"
	"github.com/compozy/changelog/internal/repository"
	"github.com/stretchr/testify/mock"
)

type mockSourceRepository struct{ mock.Mock }

func (m *mockSourceRepository) GetTreeEntry(
	ctx context.Context,
	repoID, path, projectID string,
) (*repository.TreeEntryRef, error) {
	args := m.Called(ctx, repoID, path, projectID)
	ref, _ := args.Get(0).(*repository.TreeEntryRef)
	return ref, args.Error(1)
}

func (m *mockSourceRepository) GetTree(
	ctx context.Context,
	repoID, rootObjectID, projectID string,
	recursive bool,
) ([]repository.TreeEntry, error) {
	args := m.Called(ctx, repoID, rootObjectID, projectID, recursive)
	entries, _ := args.Get(0).([]repository.TreeEntry)
	return entries, args.Error(1)
}

func (m *mockSourceRepository) GetBlobContent(
	ctx context.Context,
	repoID, objectID, projectID string,
) (io.ReadCloser, error) {
	args := m.Called(ctx, repoID, objectID, projectID)
	body, _ := args.Get(0).(io.ReadCloser)
	return body, args.Error(1)
}

func (m *mockSourceRepository) GetReleaseList(
	ctx context.Context,
	apiBaseURL, repo string,
) ([]domain.ReleaseNote, error) {
	args := m.Called(ctx, apiBaseURL, repo)
	notes, _ := args.Get(0).([]domain.ReleaseNote)
	return notes, args.Error(1)
}
