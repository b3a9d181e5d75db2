package service

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	PlatformAzure  = "azure"
	PlatformGithub = "github"
	PlatformGit    = "git"
)

// NewPlatformService returns the platform registered for id.
func NewPlatformService(id string) (PlatformService, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case PlatformAzure:
		return &azurePlatform{}, nil
	case PlatformGithub:
		return &githubPlatform{}, nil
	case PlatformGit:
		return &gitPlatform{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, id)
	}
}

// PlatformTypes lists the registered platform identifiers.
func PlatformTypes() []string {
	return []string{PlatformAzure, PlatformGithub, PlatformGit}
}

// baseURL returns "<scheme>://<host>/".
func baseURL(u *url.URL) string {
	return fmt.Sprintf("%s://%s/", u.Scheme, u.Host)
}

// repositoryPath strips the leading separator, a trailing slash and a .git suffix.
func repositoryPath(u *url.URL) string {
	p := strings.TrimPrefix(u.Path, "/")
	p = strings.TrimSuffix(p, "/")
	return strings.TrimSuffix(p, ".git")
}

func trimSourceURL(sourceURL string) string {
	return strings.TrimSuffix(strings.TrimSuffix(sourceURL, "/"), ".git")
}

// azurePlatform models Azure DevOps Repos.
type azurePlatform struct{}

func (p *azurePlatform) Type() string { return PlatformAzure }

func (p *azurePlatform) CacheNamespace() string { return "changelog-azure-release" }

// Locate maps https://dev.azure.com/org/project/_git/repo to repository "org/project/repo".
func (p *azurePlatform) Locate(u *url.URL) ProjectLocation {
	base := baseURL(u)
	return ProjectLocation{
		BaseURL:    base,
		APIBaseURL: base + "_apis/git/",
		Repository: strings.Replace(repositoryPath(u), "_git/", "", 1),
	}
}

// CompareURL builds a branchCompare link between two tags ("GT" selects a tag).
func (p *azurePlatform) CompareURL(sourceURL, prevTag, nextTag string) *string {
	link := fmt.Sprintf("%s/branchCompare?baseVersion=GT%s&targetVersion=GT%s",
		strings.TrimSuffix(sourceURL, "/"), url.QueryEscape(prevTag), url.QueryEscape(nextTag))
	return &link
}

// githubPlatform models github.com and GitHub Enterprise Server.
type githubPlatform struct{}

func (p *githubPlatform) Type() string { return PlatformGithub }

func (p *githubPlatform) CacheNamespace() string { return "changelog-github-release" }

func (p *githubPlatform) Locate(u *url.URL) ProjectLocation {
	base := baseURL(u)
	api := base + "api/v3/"
	if strings.EqualFold(u.Host, "github.com") {
		api = "https://api.github.com/"
	}
	return ProjectLocation{
		BaseURL:    base,
		APIBaseURL: api,
		Repository: repositoryPath(u),
	}
}

func (p *githubPlatform) CompareURL(sourceURL, prevTag, nextTag string) *string {
	link := fmt.Sprintf("%s/compare/%s...%s", trimSourceURL(sourceURL), prevTag, nextTag)
	return &link
}

// gitPlatform is any plain git remote without a web comparison view.
type gitPlatform struct{}

func (p *gitPlatform) Type() string { return PlatformGit }

func (p *gitPlatform) CacheNamespace() string { return "changelog-git-release" }

func (p *gitPlatform) Locate(u *url.URL) ProjectLocation {
	base := baseURL(u)
	return ProjectLocation{
		BaseURL:    base,
		APIBaseURL: base,
		Repository: repositoryPath(u),
	}
}

func (p *gitPlatform) CompareURL(_, _, _ string) *string {
	return nil
}
