package domain

import "time"

// NotesSource identifies where the text of a change entry came from.
type NotesSource string

const (
	NotesSourceReleaseList NotesSource = "release-list"
	NotesSourceChangelog   NotesSource = "changelog-file"
)

// ChangeLogChange is a single block of human-authored notes for a release.
type ChangeLogChange struct {
	Title  string      `json:"title,omitempty" yaml:"title,omitempty"`
	Body   string      `json:"body"            yaml:"body"`
	URL    string      `json:"url,omitempty"   yaml:"url,omitempty"`
	Source NotesSource `json:"source"          yaml:"source"`
}

// ChangeLogCompare holds the optional comparison link of a release.
// A nil URL means the platform offers no comparison view.
type ChangeLogCompare struct {
	URL *string `json:"url,omitempty" yaml:"url,omitempty"`
}

// ChangeLogRelease describes one in-range release and how it differs from its predecessor.
type ChangeLogRelease struct {
	Version   string            `json:"version"             yaml:"version"`
	Date      *time.Time        `json:"date,omitempty"      yaml:"date,omitempty"`
	TagPrefix string            `json:"tagPrefix,omitempty" yaml:"tagPrefix,omitempty"`
	Changes   []ChangeLogChange `json:"changes"             yaml:"changes"`
	Compare   ChangeLogCompare  `json:"compare"             yaml:"compare"`
}

// CompareURL returns the comparison link or an empty string.
func (r *ChangeLogRelease) CompareURL() string {
	if r.Compare.URL == nil {
		return ""
	}
	return *r.Compare.URL
}

// ProjectDescriptor identifies the upstream project a changelog was built for.
type ProjectDescriptor struct {
	APIBaseURL      string `json:"apiBaseUrl"                yaml:"apiBaseUrl"`
	BaseURL         string `json:"baseUrl"                   yaml:"baseUrl"`
	Type            string `json:"type"                      yaml:"type"`
	Repository      string `json:"repository"                yaml:"repository"`
	SourceURL       string `json:"sourceUrl"                 yaml:"sourceUrl"`
	SourceDirectory string `json:"sourceDirectory,omitempty" yaml:"sourceDirectory,omitempty"`
	PackageName     string `json:"packageName,omitempty"     yaml:"packageName,omitempty"`
	DepName         string `json:"depName,omitempty"         yaml:"depName,omitempty"`
	TagPrefix       string `json:"tagPrefix,omitempty"       yaml:"tagPrefix,omitempty"`
}

// ChangeLogResult is the changelog produced for a single upgrade.
// Versions are ordered newest first.
type ChangeLogResult struct {
	Project  ProjectDescriptor  `json:"project"  yaml:"project"`
	Versions []ChangeLogRelease `json:"versions" yaml:"versions"`
}

// ChangeLogFile is a changelog document read from a source tree.
type ChangeLogFile struct {
	ChangelogFile string `json:"changelogFile"`
	ChangelogMd   string `json:"changelogMd"`
}
