package usecase

import (
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases s and collapses every run of other characters into a
// single dash, so "https://dev.azure.com/org/_git/repo" becomes
// "https-dev-azure-com-org-git-repo".
func slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// CacheKeyFunc derives the cache key of the comparison record for one release pair.
type CacheKeyFunc func(prevVersion, nextVersion string) string

// NewCacheKeyFunc returns the key function for a dependency. When the package
// name is known the key is scoped by source URL and package, otherwise by
// manager and dependency name. Keys only contain caller identity and the two
// versions, so they are stable across processes.
func NewCacheKeyFunc(sourceURL, packageName, manager, depName string) CacheKeyFunc {
	var scope string
	if packageName != "" {
		scope = slugify(sourceURL) + ":" + packageName
	} else {
		scope = manager + ":" + depName
	}
	return func(prevVersion, nextVersion string) string {
		return scope + ":" + prevVersion + ":" + nextVersion
	}
}
