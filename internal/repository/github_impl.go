package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/compozy/changelog/internal/config"
	"github.com/compozy/changelog/internal/domain"
	"github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"
)

const (
	githubDefaultAPIBaseURL = "https://api.github.com/"
	githubReleasesPerPage   = 100
)

// githubSourceRepository reads trees, blobs and releases through the GitHub REST API.
// Tree and blob reads go to the API the source was created for.
type githubSourceRepository struct {
	httpClient *http.Client
	apiBaseURL string
	client     *github.Client
	mu         sync.Mutex
	clients    map[string]*github.Client
}

// NewGithubSourceRepository creates a GitHub source talking to apiBaseURL,
// e.g. https://ghe.example.com/api/v3/. An empty apiBaseURL means github.com
// and an empty token gives anonymous, rate-limited access.
func NewGithubSourceRepository(token, apiBaseURL string) (SourceRepository, error) {
	var httpClient *http.Client
	if token != "" {
		if err := config.ValidateGitHubToken(token); err != nil {
			return nil, fmt.Errorf("invalid GitHub token: %w", err)
		}
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: strings.TrimSpace(token)},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	if apiBaseURL == "" {
		apiBaseURL = githubDefaultAPIBaseURL
	}
	client, err := newGithubClient(httpClient, apiBaseURL)
	if err != nil {
		return nil, err
	}
	return &githubSourceRepository{
		httpClient: httpClient,
		apiBaseURL: apiBaseURL,
		client:     client,
		clients:    make(map[string]*github.Client),
	}, nil
}

func newGithubClient(httpClient *http.Client, apiBaseURL string) (*github.Client, error) {
	client := github.NewClient(httpClient)
	if apiBaseURL == githubDefaultAPIBaseURL {
		return client, nil
	}
	client, err := client.WithEnterpriseURLs(apiBaseURL, apiBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub enterprise client for %s: %w", apiBaseURL, err)
	}
	return client, nil
}

// clientFor returns the client talking to apiBaseURL, creating it on first use.
func (r *githubSourceRepository) clientFor(apiBaseURL string) (*github.Client, error) {
	if apiBaseURL == "" || apiBaseURL == r.apiBaseURL {
		return r.client, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[apiBaseURL]; ok {
		return c, nil
	}
	c, err := newGithubClient(r.httpClient, apiBaseURL)
	if err != nil {
		return nil, err
	}
	r.clients[apiBaseURL] = c
	return c, nil
}

// isTransientGithubError reports rate limiting and server-side failures.
func isTransientGithubError(err error) bool {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return true
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// GetTreeEntry resolves path on the default branch. "/" resolves the root tree.
func (r *githubSourceRepository) GetTreeEntry(
	ctx context.Context,
	repoID, path, projectID string,
) (*TreeEntryRef, error) {
	target := strings.Trim(path, "/")
	var tree *github.Tree
	err := doWithRetry(ctx, isTransientGithubError, func(ctx context.Context) error {
		var err error
		tree, _, err = r.client.Git.GetTree(ctx, projectID, repoID, "HEAD", target != "")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get tree of %s/%s: %w", projectID, repoID, err)
	}
	if target == "" {
		return &TreeEntryRef{ObjectID: tree.GetSHA()}, nil
	}
	for _, entry := range tree.Entries {
		if entry.GetPath() == target {
			return &TreeEntryRef{ObjectID: entry.GetSHA()}, nil
		}
	}
	return nil, fmt.Errorf("path %s not found in %s/%s", path, projectID, repoID)
}

// GetTree lists the tree identified by rootObjectID. When GitHub truncates a
// recursive listing the partial entries are returned with ErrTreeTruncated.
func (r *githubSourceRepository) GetTree(
	ctx context.Context,
	repoID, rootObjectID, projectID string,
	recursive bool,
) ([]TreeEntry, error) {
	var tree *github.Tree
	err := doWithRetry(ctx, isTransientGithubError, func(ctx context.Context) error {
		var err error
		tree, _, err = r.client.Git.GetTree(ctx, projectID, repoID, rootObjectID, recursive)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get tree %s of %s/%s: %w", rootObjectID, projectID, repoID, err)
	}
	entries := make([]TreeEntry, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		entries = append(entries, TreeEntry{
			RelativePath: entry.GetPath(),
			ObjectID:     entry.GetSHA(),
			ObjectType:   ObjectType(entry.GetType()),
		})
	}
	if tree.GetTruncated() {
		return entries, fmt.Errorf("tree %s of %s/%s: %w", rootObjectID, projectID, repoID, ErrTreeTruncated)
	}
	return entries, nil
}

// GetBlobContent downloads the raw content of a blob.
func (r *githubSourceRepository) GetBlobContent(
	ctx context.Context,
	repoID, objectID, projectID string,
) (io.ReadCloser, error) {
	var raw []byte
	err := doWithRetry(ctx, isTransientGithubError, func(ctx context.Context) error {
		var err error
		raw, _, err = r.client.Git.GetBlobRaw(ctx, projectID, repoID, objectID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get blob %s of %s/%s: %w", objectID, projectID, repoID, err)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

// GetReleaseList returns every published release of repository.
func (r *githubSourceRepository) GetReleaseList(
	ctx context.Context,
	apiBaseURL, repository string,
) ([]domain.ReleaseNote, error) {
	client, err := r.clientFor(apiBaseURL)
	if err != nil {
		return nil, err
	}
	owner, repo := SplitRepository(repository)
	notes := []domain.ReleaseNote{}
	opts := &github.ListOptions{PerPage: githubReleasesPerPage}
	for {
		var releases []*github.RepositoryRelease
		var resp *github.Response
		err := doWithRetry(ctx, isTransientGithubError, func(ctx context.Context) error {
			var err error
			releases, resp, err = client.Repositories.ListReleases(ctx, owner, repo, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list releases of %s: %w", repository, err)
		}
		for _, rel := range releases {
			if rel.GetDraft() {
				continue
			}
			notes = append(notes, domain.ReleaseNote{
				Version:     strings.TrimPrefix(rel.GetTagName(), "v"),
				Tag:         rel.GetTagName(),
				Name:        rel.GetName(),
				Body:        rel.GetBody(),
				URL:         rel.GetHTMLURL(),
				PublishedAt: rel.PublishedAt.GetTime(),
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return notes, nil
}
