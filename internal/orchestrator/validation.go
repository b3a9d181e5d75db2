package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/compozy/changelog/internal/domain"
)

// ErrInvalidUpgrade is returned for upgrade descriptors missing required fields.
var ErrInvalidUpgrade = errors.New("invalid upgrade")

// ValidateUpgrade checks the fields every changelog lookup needs. Version
// syntax is left to the versioning scheme.
func ValidateUpgrade(upgrade *domain.Upgrade) error {
	if upgrade == nil {
		return fmt.Errorf("%w: upgrade cannot be nil", ErrInvalidUpgrade)
	}
	var missing []string
	if strings.TrimSpace(upgrade.NewVersion) == "" {
		missing = append(missing, "newVersion")
	}
	if strings.TrimSpace(upgrade.SourceURL) == "" {
		missing = append(missing, "sourceUrl")
	}
	if upgrade.PackageName == "" && upgrade.DepName == "" {
		missing = append(missing, "packageName or depName")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidUpgrade, strings.Join(missing, ", "))
	}
	if strings.Contains(upgrade.SourceDirectory, "..") {
		return fmt.Errorf("%w: sourceDirectory contains invalid path traversal", ErrInvalidUpgrade)
	}
	return nil
}
