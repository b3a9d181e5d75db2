package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/compozy/changelog/internal/domain"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
)

// azureGitAPI is the subset of the Azure DevOps git client used here.
type azureGitAPI interface {
	GetItem(ctx context.Context, args git.GetItemArgs) (*git.GitItem, error)
	GetTree(ctx context.Context, args git.GetTreeArgs) (*git.GitTreeRef, error)
	GetBlobContent(ctx context.Context, args git.GetBlobContentArgs) (io.ReadCloser, error)
}

// azureSourceRepository reads Azure DevOps Repos through the official SDK.
type azureSourceRepository struct {
	api azureGitAPI
}

// NewAzureSourceRepository connects to an organization, e.g. https://dev.azure.com/acme,
// with a personal access token.
func NewAzureSourceRepository(ctx context.Context, organizationURL, token string) (SourceRepository, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("azure: %w", ErrPlatformTokenRequired)
	}
	connection := azuredevops.NewPatConnection(strings.TrimSuffix(organizationURL, "/"), strings.TrimSpace(token))
	client, err := git.NewClient(ctx, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure DevOps git client: %w", err)
	}
	return &azureSourceRepository{api: client}, nil
}

// isTransientAzureError retries network timeouts only; API errors are final.
func isTransientAzureError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// GetTreeEntry resolves path ("/" for the root) to its object id.
func (r *azureSourceRepository) GetTreeEntry(
	ctx context.Context,
	repoID, path, projectID string,
) (*TreeEntryRef, error) {
	if path == "" {
		path = "/"
	}
	var item *git.GitItem
	err := doWithRetry(ctx, isTransientAzureError, func(ctx context.Context) error {
		var err error
		item, err = r.api.GetItem(ctx, git.GetItemArgs{
			RepositoryId: &repoID,
			Path:         &path,
			Project:      &projectID,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s in %s/%s: %w", path, projectID, repoID, err)
	}
	if item == nil || item.ObjectId == nil {
		return nil, fmt.Errorf("item %s in %s/%s has no object id", path, projectID, repoID)
	}
	return &TreeEntryRef{ObjectID: *item.ObjectId}, nil
}

// GetTree lists the tree rootObjectID.
func (r *azureSourceRepository) GetTree(
	ctx context.Context,
	repoID, rootObjectID, projectID string,
	recursive bool,
) ([]TreeEntry, error) {
	var tree *git.GitTreeRef
	err := doWithRetry(ctx, isTransientAzureError, func(ctx context.Context) error {
		var err error
		tree, err = r.api.GetTree(ctx, git.GetTreeArgs{
			RepositoryId: &repoID,
			Sha1:         &rootObjectID,
			Project:      &projectID,
			Recursive:    &recursive,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get tree %s in %s/%s: %w", rootObjectID, projectID, repoID, err)
	}
	if tree == nil || tree.TreeEntries == nil {
		return []TreeEntry{}, nil
	}
	entries := make([]TreeEntry, 0, len(*tree.TreeEntries))
	for _, e := range *tree.TreeEntries {
		entry := TreeEntry{}
		if e.RelativePath != nil {
			entry.RelativePath = *e.RelativePath
		}
		if e.ObjectId != nil {
			entry.ObjectID = *e.ObjectId
		}
		if e.GitObjectType != nil {
			entry.ObjectType = ObjectType(strings.ToLower(string(*e.GitObjectType)))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetBlobContent streams a blob. The caller closes the reader.
func (r *azureSourceRepository) GetBlobContent(
	ctx context.Context,
	repoID, objectID, projectID string,
) (io.ReadCloser, error) {
	var body io.ReadCloser
	err := doWithRetry(ctx, isTransientAzureError, func(ctx context.Context) error {
		var err error
		body, err = r.api.GetBlobContent(ctx, git.GetBlobContentArgs{
			RepositoryId: &repoID,
			Sha1:         &objectID,
			Project:      &projectID,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get blob %s in %s/%s: %w", objectID, projectID, repoID, err)
	}
	return body, nil
}

// GetReleaseList is always empty: Azure DevOps Repos has no releases.
func (r *azureSourceRepository) GetReleaseList(_ context.Context, _, _ string) ([]domain.ReleaseNote, error) {
	return []domain.ReleaseNote{}, nil
}
