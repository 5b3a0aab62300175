package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckVersionCompatibility checks whether persisted state written with
// stateVersion can be read by a reader supporting readerVersion.
// Returns nil if compatible, error with details if not.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major versions must match exactly
//   - The state's minor version must not be newer than the reader's
//   - Patch versions can differ
//
// Examples:
//   - Reader 1.2.0, State 1.2.0 -> OK (exact match)
//   - Reader 1.2.0, State 1.2.7 -> OK (patch differs)
//   - Reader 1.3.0, State 1.2.0 -> OK (older state, same major)
//   - Reader 1.2.0, State 1.3.0 -> ERROR (state is newer)
//   - Reader 2.0.0, State 1.2.0 -> ERROR (major differs)
func CheckVersionCompatibility(readerVersion, stateVersion string) error {
	// Strip 'v' prefix if present for consistency
	readerVersion = strings.TrimPrefix(readerVersion, "v")
	stateVersion = strings.TrimPrefix(stateVersion, "v")

	// Skip version check for "main" (development builds)
	if readerVersion == "main" || stateVersion == "main" {
		return nil
	}

	readerSemver, err := semver.NewVersion(readerVersion)
	if err != nil {
		return fmt.Errorf("invalid reader version '%s': %w", readerVersion, err)
	}

	stateSemver, err := semver.NewVersion(stateVersion)
	if err != nil {
		return fmt.Errorf("invalid state version '%s': %w", stateVersion, err)
	}

	if readerSemver.Major() != stateSemver.Major() {
		return fmt.Errorf("major version mismatch: reader supports %d.x.x but state was written as %d.x.x",
			readerSemver.Major(), stateSemver.Major())
	}

	if stateSemver.Minor() > readerSemver.Minor() {
		return fmt.Errorf("minor version mismatch: state %d.%d.x is newer than reader %d.%d.x",
			stateSemver.Major(), stateSemver.Minor(),
			readerSemver.Major(), readerSemver.Minor())
	}

	return nil
}
