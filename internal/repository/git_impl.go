package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/compozy/changelog/internal/domain"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
)

// gitSourceRepository reads trees and blobs from any git remote through an
// in-memory shallow clone.
type gitSourceRepository struct {
	url   string
	token string
	mu    sync.Mutex
	repo  *git.Repository
}

// NewGitSourceRepository creates a source for the remote at url. The clone
// happens on first use.
func NewGitSourceRepository(url, token string) SourceRepository {
	return &gitSourceRepository{url: url, token: token}
}

// newGitSourceRepositoryFromRepo wraps an already opened repository.
func newGitSourceRepositoryFromRepo(repo *git.Repository) *gitSourceRepository {
	return &gitSourceRepository{repo: repo}
}

// getAuth returns basic auth for token-protected remotes
func (r *gitSourceRepository) getAuth() *http.BasicAuth {
	if r.token == "" {
		return nil
	}
	return &http.BasicAuth{
		Username: "x-access-token",
		Password: r.token,
	}
}

// open clones the remote once and reuses the in-memory repository.
func (r *gitSourceRepository) open(ctx context.Context) (*git.Repository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.repo != nil {
		return r.repo, nil
	}
	opts := &git.CloneOptions{
		URL:          r.url,
		Depth:        1,
		SingleBranch: true,
	}
	if auth := r.getAuth(); auth != nil {
		opts.Auth = auth
	}
	repo, err := git.CloneContext(ctx, memory.NewStorage(), nil, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", r.url, err)
	}
	r.repo = repo
	return repo, nil
}

// headTree returns the tree of the HEAD commit.
func (r *gitSourceRepository) headTree(repo *git.Repository) (*object.Tree, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD tree: %w", err)
	}
	return tree, nil
}

// GetTreeEntry resolves path in the HEAD tree. "/" resolves the root tree.
func (r *gitSourceRepository) GetTreeEntry(ctx context.Context, _, path, _ string) (*TreeEntryRef, error) {
	repo, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	tree, err := r.headTree(repo)
	if err != nil {
		return nil, err
	}
	target := strings.Trim(path, "/")
	if target == "" {
		return &TreeEntryRef{ObjectID: tree.Hash.String()}, nil
	}
	entry, err := tree.FindEntry(target)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", path, err)
	}
	return &TreeEntryRef{ObjectID: entry.Hash.String()}, nil
}

// GetTree lists the tree rootObjectID. Directories and submodules are
// reported with their own object types.
func (r *gitSourceRepository) GetTree(
	ctx context.Context,
	_, rootObjectID, _ string,
	recursive bool,
) ([]TreeEntry, error) {
	repo, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	tree, err := repo.TreeObject(plumbing.NewHash(rootObjectID))
	if err != nil {
		return nil, fmt.Errorf("failed to get tree %s: %w", rootObjectID, err)
	}
	walker := object.NewTreeWalker(tree, recursive, nil)
	defer walker.Close()
	var entries []TreeEntry
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, entry, err := walker.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to walk tree %s: %w", rootObjectID, err)
		}
		entries = append(entries, TreeEntry{
			RelativePath: name,
			ObjectID:     entry.Hash.String(),
			ObjectType:   objectTypeOf(entry.Mode),
		})
	}
	return entries, nil
}

func objectTypeOf(mode filemode.FileMode) ObjectType {
	switch mode {
	case filemode.Dir:
		return ObjectTypeTree
	case filemode.Submodule:
		return ObjectTypeCommit
	default:
		return ObjectTypeBlob
	}
}

// GetBlobContent opens a reader over a blob.
func (r *gitSourceRepository) GetBlobContent(ctx context.Context, _, objectID, _ string) (io.ReadCloser, error) {
	repo, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	blob, err := repo.BlobObject(plumbing.NewHash(objectID))
	if err != nil {
		return nil, fmt.Errorf("failed to get blob %s: %w", objectID, err)
	}
	return blob.Reader()
}

// GetReleaseList is always empty: plain git remotes have no release concept.
func (r *gitSourceRepository) GetReleaseList(_ context.Context, _, _ string) ([]domain.ReleaseNote, error) {
	return []domain.ReleaseNote{}, nil
}
