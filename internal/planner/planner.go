// Package planner computes the ordered sequence of intermediate versions a
// deployment must traverse between its installed version and a target.
package planner

import (
	"errors"
	"fmt"
	"sort"

	"github.com/netzint/nextcloudctl/internal/registry"
)

// ErrInvalidInstalledVersion means the currently installed version could
// not be determined or parsed. Planning fails closed rather than comparing
// against a meaningless value.
var ErrInvalidInstalledVersion = errors.New("installed version could not be parsed")

// Step is one upgrade step in a plan. Steps are produced before execution
// begins and never mutated during a run.
type Step struct {
	// Ordinal is the 1-based position within the plan.
	Ordinal int
	// Target is the version this step upgrades to.
	Target registry.VersionTag
}

// Plan is an ordered sequence of steps, ascending by version, covering
// every major strictly between the installed version and the chosen
// target (inclusive of target, exclusive of installed). The application
// only supports adjacent-major upgrades, so majors are never skipped.
type Plan struct {
	Installed registry.VersionTag
	Steps     []Step
}

// Empty reports whether the deployment is already current.
func (p Plan) Empty() bool { return len(p.Steps) == 0 }

// Compute builds an upgrade plan. installed is the raw tag of the running
// deployment; available is the version catalog; target, when non-nil,
// caps the plan at that version. An empty plan is a valid non-error
// outcome meaning "already current".
func Compute(installed string, available []registry.VersionTag, filter registry.Filter, target *registry.VersionTag) (Plan, error) {
	from, err := registry.ParseTag(installed, filter)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %q", ErrInvalidInstalledVersion, installed)
	}

	var pending []registry.VersionTag
	for _, v := range available {
		if !v.Version.GreaterThan(from.Version) {
			continue
		}
		if target != nil && v.Version.GreaterThan(target.Version) {
			continue
		}
		pending = append(pending, v)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Version.LessThan(pending[j].Version)
	})

	plan := Plan{Installed: from}
	for i, v := range pending {
		plan.Steps = append(plan.Steps, Step{Ordinal: i + 1, Target: v})
	}
	return plan, nil
}
