package service

import "errors"

// ErrUnknownVersioning is returned when no strategy is registered for a scheme id.
var ErrUnknownVersioning = errors.New("unknown versioning scheme")

// VersioningService defines the operations needed to order the releases of one versioning scheme.
type VersioningService interface {
	// IsVersion reports whether v is a valid version in this scheme.
	IsVersion(v string) bool
	// IsGreaterThan reports whether a sorts strictly after b.
	IsGreaterThan(a, b string) bool
	// SortVersions returns a negative number, zero or a positive number
	// when a sorts before, equal to or after b.
	SortVersions(a, b string) int
}
