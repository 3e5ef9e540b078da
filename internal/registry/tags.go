package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// VersionTag is a registry tag together with its parsed semantic version.
// A VersionTag is only ever constructed through ParseTag, so holding one
// guarantees the tag parsed cleanly after variant-suffix stripping.
type VersionTag struct {
	// Tag is the raw registry tag, e.g. "29.0.4-fpm".
	Tag string
	// Version is the parsed core version with the variant suffix removed.
	Version *semver.Version
	// Variant is the runtime-flavor suffix without the leading dash,
	// e.g. "fpm". Empty for plain version tags.
	Variant string
}

// String returns the raw tag.
func (t VersionTag) String() string { return t.Tag }

// Major returns the major component of the parsed version.
func (t VersionTag) Major() uint64 { return t.Version.Major() }

// Filter selects which raw registry tags are eligible to become
// VersionTags.
type Filter struct {
	// Deny rejects any tag containing one of these substrings
	// (pre-release and platform-variant markers).
	Deny []string
	// Require, when non-empty, rejects any tag not containing this
	// substring. Used for repositories where only one runtime flavor
	// is wanted.
	Require string
	// StripSuffix is removed from the tag before version parsing,
	// e.g. "-fpm".
	StripSuffix string
}

// DefaultFilter matches plain semantic-version tags, skipping pre-release
// and Windows builds.
func DefaultFilter() Filter {
	return Filter{Deny: []string{"windows", "rc", "beta"}}
}

// NextcloudFPMFilter matches only the FPM flavor of the Nextcloud
// repository.
func NextcloudFPMFilter() Filter {
	return Filter{
		Deny:        []string{"apache", "windows", "rc", "beta"},
		Require:     "fpm",
		StripSuffix: "-fpm",
	}
}

// Accept reports whether the raw tag passes the deny-list and the
// required-substring check. It does not attempt version parsing.
func (f Filter) Accept(tag string) bool {
	for _, sub := range f.Deny {
		if strings.Contains(tag, sub) {
			return false
		}
	}
	if f.Require != "" && !strings.Contains(tag, f.Require) {
		return false
	}
	return true
}

// ParseTag builds a VersionTag from a raw registry tag. Tags failing the
// filter or not parsing as a semantic version after suffix stripping
// return an error; the registry legitimately hosts non-version tags like
// "latest", so callers typically discard these silently.
func ParseTag(tag string, filter Filter) (VersionTag, error) {
	if !filter.Accept(tag) {
		return VersionTag{}, fmt.Errorf("tag %q rejected by filter", tag)
	}
	core := tag
	variant := ""
	if filter.StripSuffix != "" && strings.HasSuffix(tag, filter.StripSuffix) {
		core = strings.TrimSuffix(tag, filter.StripSuffix)
		variant = strings.TrimPrefix(filter.StripSuffix, "-")
	}
	v, err := semver.NewVersion(core)
	if err != nil {
		return VersionTag{}, fmt.Errorf("tag %q is not a semantic version: %w", tag, err)
	}
	return VersionTag{Tag: tag, Version: v, Variant: variant}, nil
}

// sortDescending orders tags by parsed version, highest first.
func sortDescending(tags []VersionTag) {
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Version.GreaterThan(tags[j].Version)
	})
}

// collapseMajors folds a descending-sorted tag list into at most one entry
// per major version, keeping the highest tag per major and at most
// maxMajors entries. The result stays in descending order.
func collapseMajors(sorted []VersionTag, maxMajors int) []VersionTag {
	seen := make(map[uint64]bool, maxMajors)
	var out []VersionTag
	for _, t := range sorted {
		if seen[t.Major()] {
			continue
		}
		seen[t.Major()] = true
		out = append(out, t)
		if len(out) >= maxMajors {
			break
		}
	}
	return out
}
