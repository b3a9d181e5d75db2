package domain

// Upgrade describes a dependency moving from CurrentVersion to NewVersion.
type Upgrade struct {
	Versioning      string    `json:"versioning"                yaml:"versioning"`
	Platform        string    `json:"platform"                  yaml:"platform"`
	CurrentVersion  string    `json:"currentVersion"            yaml:"currentVersion"`
	NewVersion      string    `json:"newVersion"                yaml:"newVersion"`
	SourceURL       string    `json:"sourceUrl"                 yaml:"sourceUrl"`
	SourceDirectory string    `json:"sourceDirectory,omitempty" yaml:"sourceDirectory,omitempty"`
	PackageName     string    `json:"packageName,omitempty"     yaml:"packageName,omitempty"`
	DepName         string    `json:"depName,omitempty"         yaml:"depName,omitempty"`
	Manager         string    `json:"manager,omitempty"         yaml:"manager,omitempty"`
	Releases        []Release `json:"releases"                  yaml:"releases"`
}
