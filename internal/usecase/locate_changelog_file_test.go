package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/compozy/changelog/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func blobs(paths ...string) []repository.TreeEntry {
	out := make([]repository.TreeEntry, 0, len(paths))
	for _, p := range paths {
		out = append(out, repository.TreeEntry{RelativePath: p, ObjectID: "id:" + p, ObjectType: repository.ObjectTypeBlob})
	}
	return out
}

func TestIsChangelogPath(t *testing.T) {
	for _, p := range []string{
		"CHANGELOG.md", "changelog", "docs/History.rst", "CHANGES.txt", "NEWS", "RELEASES.md",
		"release-notes.md", "Change-Log.markdown", "packages/a/changelog.adoc",
	} {
		assert.True(t, IsChangelogPath(p), p)
	}
	for _, p := range []string{
		"README.md", "CHANGELOG.pkg.md", "src/changelog.go", "changelog/index.md", "mychangelog.md",
	} {
		assert.False(t, IsChangelogPath(p), p)
	}
}

func TestLocateChangelogFileUseCase_Select(t *testing.T) {
	uc := &LocateChangelogFileUseCase{}

	t.Run("Should prefer files under the source directory", func(t *testing.T) {
		entries := blobs("CHANGELOG.md", "packages/foo/CHANGELOG.md", "packages/foo/src/a.ts")
		selected := uc.Select(entries, "/packages/foo", "")
		require.NotNil(t, selected)
		assert.Equal(t, "packages/foo/CHANGELOG.md", selected.RelativePath)
	})
	t.Run("Should match nested changelogs relative to the source directory", func(t *testing.T) {
		entries := blobs("packages/foo/docs/HISTORY.md")
		selected := uc.Select(entries, "packages/foo", "")
		require.NotNil(t, selected)
		assert.Equal(t, "packages/foo/docs/HISTORY.md", selected.RelativePath)
	})
	t.Run("Should not treat sibling directories as under the source directory", func(t *testing.T) {
		entries := blobs("CHANGELOG.md", "packages/foobar/CHANGELOG.md")
		selected := uc.Select(entries, "packages/foo", "")
		require.NotNil(t, selected)
		assert.Equal(t, "CHANGELOG.md", selected.RelativePath)
		selected = uc.Select(entries, "packages/foobar", "")
		require.NotNil(t, selected)
		assert.Equal(t, "packages/foobar/CHANGELOG.md", selected.RelativePath)
	})
	t.Run("Should fall back to the tag prefix file", func(t *testing.T) {
		entries := blobs("CHANGELOG.foo.md", "CHANGELOG.md", "packages/foo/index.ts")
		selected := uc.Select(entries, "/packages/foo", "foo")
		require.NotNil(t, selected)
		assert.Equal(t, "CHANGELOG.foo.md", selected.RelativePath)
	})
	t.Run("Should fall back to the unrestricted heuristic", func(t *testing.T) {
		entries := blobs("CHANGELOG.md", "packages/foo/index.ts")
		selected := uc.Select(entries, "/packages/foo", "foo")
		require.NotNil(t, selected)
		assert.Equal(t, "CHANGELOG.md", selected.RelativePath)
	})
	t.Run("Should return nil without candidates", func(t *testing.T) {
		assert.Nil(t, uc.Select(blobs("README.md", "src/main.go"), "", ""))
		assert.Nil(t, uc.Select(nil, "dir", "prefix"))
	})
	t.Run("Should be deterministic", func(t *testing.T) {
		entries := blobs("CHANGELOG.md", "docs/CHANGELOG.md")
		for range 10 {
			assert.Equal(t, "CHANGELOG.md", uc.Select(entries, "", "").RelativePath)
		}
	})
}

func TestLocateChangelogFileUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	repo := "org/project/repo"

	setup := func(entries []repository.TreeEntry) *mockSourceRepository {
		source := new(mockSourceRepository)
		source.On("GetTreeEntry", mock.Anything, "repo", "/", "project").
			Return(&repository.TreeEntryRef{ObjectID: "root"}, nil)
		source.On("GetTree", mock.Anything, "repo", "root", "project", true).Return(entries, nil)
		return source
	}

	t.Run("Should pick the first file in path order and log the ambiguity", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		entries := append(blobs("docs/CHANGELOG.md", "CHANGELOG.md"),
			repository.TreeEntry{RelativePath: "docs", ObjectID: "d", ObjectType: repository.ObjectTypeTree})
		source := setup(entries)
		body := &trackingReader{Reader: strings.NewReader("## 1.0.0\n- first")}
		source.On("GetBlobContent", mock.Anything, "repo", "id:CHANGELOG.md", "project").Return(body, nil)
		uc := &LocateChangelogFileUseCase{Logger: zap.New(core)}
		file, err := uc.Execute(ctx, source, repo, "", "")
		require.NoError(t, err)
		require.NotNil(t, file)
		assert.Equal(t, "CHANGELOG.md", file.ChangelogFile)
		assert.Equal(t, "## 1.0.0\n- first", file.ChangelogMd)
		assert.True(t, body.closed)
		assert.Equal(t, 1, logs.FilterMessageSnippet("multiple changelog files").Len())
		source.AssertExpectations(t)
	})
	t.Run("Should return nil when no file matches", func(t *testing.T) {
		source := setup(blobs("README.md"))
		uc := &LocateChangelogFileUseCase{}
		file, err := uc.Execute(ctx, source, repo, "", "")
		require.NoError(t, err)
		assert.Nil(t, file)
		source.AssertNotCalled(t, "GetBlobContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
	t.Run("Should replace invalid utf-8", func(t *testing.T) {
		source := setup(blobs("CHANGELOG.md"))
		source.On("GetBlobContent", mock.Anything, "repo", "id:CHANGELOG.md", "project").
			Return(&trackingReader{Reader: strings.NewReader("ok \xff")}, nil)
		uc := &LocateChangelogFileUseCase{}
		file, err := uc.Execute(ctx, source, repo, "", "")
		require.NoError(t, err)
		assert.Equal(t, "ok \uFFFD", file.ChangelogMd)
	})
	t.Run("Should search a truncated listing and log the truncation", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		source := new(mockSourceRepository)
		source.On("GetTreeEntry", mock.Anything, "repo", "/", "project").
			Return(&repository.TreeEntryRef{ObjectID: "root"}, nil)
		source.On("GetTree", mock.Anything, "repo", "root", "project", true).
			Return(blobs("CHANGELOG.md"), fmt.Errorf("listing root: %w", repository.ErrTreeTruncated))
		source.On("GetBlobContent", mock.Anything, "repo", "id:CHANGELOG.md", "project").
			Return(&trackingReader{Reader: strings.NewReader("## 1.0.0")}, nil)
		uc := &LocateChangelogFileUseCase{Logger: zap.New(core)}
		file, err := uc.Execute(ctx, source, repo, "", "")
		require.NoError(t, err)
		require.NotNil(t, file)
		assert.Equal(t, "CHANGELOG.md", file.ChangelogFile)
		assert.Equal(t, 1, logs.FilterMessageSnippet("tree listing truncated").Len())
	})
	t.Run("Should propagate source errors", func(t *testing.T) {
		sourceErr := errors.New("boom")
		source := new(mockSourceRepository)
		source.On("GetTreeEntry", mock.Anything, "repo", "/", "project").Return(nil, sourceErr)
		uc := &LocateChangelogFileUseCase{}
		_, err := uc.Execute(ctx, source, repo, "", "")
		assert.ErrorIs(t, err, sourceErr)
	})
}
