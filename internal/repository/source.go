package repository

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/compozy/changelog/internal/domain"
)

// ErrSourceUnavailable is returned by sources that cannot read repository trees.
var ErrSourceUnavailable = errors.New("source repository is not available")

// ErrTreeTruncated is returned by GetTree together with the partial listing
// when the platform capped the number of entries.
var ErrTreeTruncated = errors.New("tree listing truncated")

// ObjectType is the kind of a git object in a tree listing.
type ObjectType string

const (
	ObjectTypeBlob   ObjectType = "blob"
	ObjectTypeTree   ObjectType = "tree"
	ObjectTypeCommit ObjectType = "commit"
)

// TreeEntryRef points at a single object in a repository.
type TreeEntryRef struct {
	ObjectID string
}

// TreeEntry is one element of a tree listing. RelativePath is relative to
// the tree the listing was requested for.
type TreeEntry struct {
	RelativePath string
	ObjectID     string
	ObjectType   ObjectType
}

// SourceRepository defines the read operations the changelog pipeline needs
// from a source hosting platform.
type SourceRepository interface {
	GetTreeEntry(ctx context.Context, repoID, path, projectID string) (*TreeEntryRef, error)
	GetTree(ctx context.Context, repoID, rootObjectID, projectID string, recursive bool) ([]TreeEntry, error)
	GetBlobContent(ctx context.Context, repoID, objectID, projectID string) (io.ReadCloser, error)
	// GetReleaseList returns an empty list, never an error, on platforms without releases.
	GetReleaseList(ctx context.Context, apiBaseURL, repository string) ([]domain.ReleaseNote, error)
}

// SplitRepository splits "a/b/repo" into the owning project ("b") and the repository name ("repo").
func SplitRepository(repository string) (projectID, repoID string) {
	parts := strings.Split(strings.Trim(repository, "/"), "/")
	repoID = parts[len(parts)-1]
	if len(parts) > 1 {
		projectID = parts[len(parts)-2]
	}
	return projectID, repoID
}
