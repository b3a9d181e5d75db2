package repository

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/compozy/changelog/internal/domain"
)

var ErrPlatformTokenRequired = errors.New("a platform token is required for source operations")

type noopSourceRepository struct {
	platform string
}

// NewNoopSourceRepository returns a source for platforms configured without credentials.
func NewNoopSourceRepository(platform string) SourceRepository {
	return &noopSourceRepository{platform: platform}
}

func (r *noopSourceRepository) GetTreeEntry(_ context.Context, _, _, _ string) (*TreeEntryRef, error) {
	return nil, r.operationError("resolve tree entry")
}

func (r *noopSourceRepository) GetTree(_ context.Context, _, _, _ string, _ bool) ([]TreeEntry, error) {
	return nil, r.operationError("list tree")
}

func (r *noopSourceRepository) GetBlobContent(_ context.Context, _, _, _ string) (io.ReadCloser, error) {
	return nil, r.operationError("read blob")
}

func (r *noopSourceRepository) GetReleaseList(_ context.Context, _, _ string) ([]domain.ReleaseNote, error) {
	return []domain.ReleaseNote{}, nil
}

func (r *noopSourceRepository) operationError(action string) error {
	return fmt.Errorf("%w: unable to %s on %s (%w)", ErrSourceUnavailable, action, r.platform, ErrPlatformTokenRequired)
}
