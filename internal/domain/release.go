package domain

import "time"

// Release is a published version of a dependency as supplied by the caller.
type Release struct {
	Version          string     `json:"version"                    yaml:"version"`
	ReleaseTimestamp *time.Time `json:"releaseTimestamp,omitempty" yaml:"releaseTimestamp,omitempty"`
	TagPrefix        string     `json:"tagPrefix,omitempty"        yaml:"tagPrefix,omitempty"`
}

// ReleaseNote is one entry of a platform release list.
type ReleaseNote struct {
	Version     string     `json:"version"               yaml:"version"`
	Tag         string     `json:"tag"                   yaml:"tag"`
	Name        string     `json:"name,omitempty"        yaml:"name,omitempty"`
	Body        string     `json:"body,omitempty"        yaml:"body,omitempty"`
	URL         string     `json:"url,omitempty"         yaml:"url,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`
}

// TagName returns the source-control tag for version under the given prefix.
// Prefixed tags follow the monorepo convention "<prefix>/<version>".
func TagName(tagPrefix, version string) string {
	if tagPrefix == "" {
		return version
	}
	return tagPrefix + "/" + version
}

// FirstTagPrefix returns the first non-empty tag prefix in releases.
func FirstTagPrefix(releases []Release) string {
	for _, r := range releases {
		if r.TagPrefix != "" {
			return r.TagPrefix
		}
	}
	return ""
}
