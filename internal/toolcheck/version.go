package toolcheck

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// versionPattern matches the dotted version the probed tools print, e.g.
// "4.11.1" from `gmsh --version` or "9.0" in an Elmer banner.
var versionPattern = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// extractVersion pulls the first dotted version out of tool output, or ""
// when none is present.
func extractVersion(output string) string {
	return versionPattern.FindString(output)
}

// checkMinVersion verifies a reported version against a semver constraint.
func checkMinVersion(version, constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("unparseable version %q: %w", version, err)
	}

	if !c.Check(v) {
		return fmt.Errorf("version %s does not satisfy %s", version, constraint)
	}
	return nil
}
