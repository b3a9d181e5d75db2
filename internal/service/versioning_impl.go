package service

import (
	"fmt"
	"strings"

	"github.com/compozy/changelog/internal/domain"
)

const (
	// VersioningSemver is strict SemVer 2.0.
	VersioningSemver = "semver"
	// VersioningLoose accepts a v prefix and partial versions such as "1.2".
	VersioningLoose = "loose"
)

// semverVersioning is the implementation of the VersioningService interface
// for the semver family of schemes.
type semverVersioning struct {
	parse func(string) (*domain.Version, error)
}

// NewVersioningService returns the strategy registered for id.
// An empty id selects strict semver.
func NewVersioningService(id string) (VersioningService, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "", VersioningSemver:
		return &semverVersioning{parse: domain.NewStrictVersion}, nil
	case VersioningLoose:
		return &semverVersioning{parse: domain.NewVersion}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownVersioning, id)
	}
}

// IsVersion reports whether v parses under this scheme.
func (s *semverVersioning) IsVersion(v string) bool {
	_, err := s.parse(v)
	return err == nil
}

// IsGreaterThan reports whether a sorts strictly after b.
// Invalid input is never greater than anything.
func (s *semverVersioning) IsGreaterThan(a, b string) bool {
	va, err := s.parse(a)
	if err != nil {
		return false
	}
	vb, err := s.parse(b)
	if err != nil {
		return true
	}
	return va.GreaterThan(vb)
}

// SortVersions orders invalid versions before valid ones and falls back to
// string order when neither parses, so the ordering stays total.
func (s *semverVersioning) SortVersions(a, b string) int {
	va, errA := s.parse(a)
	vb, errB := s.parse(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}
