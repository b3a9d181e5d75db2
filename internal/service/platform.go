package service

import (
	"errors"
	"net/url"
)

// ErrUnknownPlatform is returned when no platform is registered for an id.
var ErrUnknownPlatform = errors.New("unknown source platform")

// ProjectLocation is the part of a project descriptor derived from its source URL.
type ProjectLocation struct {
	BaseURL    string
	APIBaseURL string
	Repository string
}

// PlatformService defines the hosting-platform specific parts of changelog resolution.
type PlatformService interface {
	// Type is the platform identifier, e.g. "azure".
	Type() string
	// CacheNamespace keeps comparison records of different platforms apart.
	CacheNamespace() string
	// Locate derives the base URLs and repository identifier from a parsed source URL.
	Locate(sourceURL *url.URL) ProjectLocation
	// CompareURL returns a link rendering the diff between two tags, or nil
	// when the platform has no comparison view.
	CompareURL(sourceURL, prevTag, nextTag string) *string
}
