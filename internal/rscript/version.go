package rscript

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SupportsR reports whether the script accepts R version v. Scripts without
// a requires_r declaration accept any version.
func (a *Algorithm) SupportsR(v *semver.Version) (bool, error) {
	if a.RequiresR == "" {
		return true, nil
	}
	c, err := semver.NewConstraint(a.RequiresR)
	if err != nil {
		return false, fmt.Errorf("parsing R version constraint %q: %w", a.RequiresR, err)
	}
	return c.Check(v), nil
}
