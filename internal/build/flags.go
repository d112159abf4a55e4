// SPDX-License-Identifier: MIT
//
// Package build exposes metadata embedded at compile time with linker flags:
//
//	go build -ldflags "-X earshot/internal/build.buildName=earshot \
//	    -X earshot/internal/build.buildVersion=0.3.0 \
//	    -X earshot/internal/build.buildCommit=$(git rev-parse --short HEAD) \
//	    -X earshot/internal/build.buildTime=$(date -u +%FT%TZ)"
//
// Development builds run with the defaults below.
package build

import (
	"errors"
	"fmt"
)

const description = "Audio feature extraction and fused recognition"

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String formats the flags for `earshot version`.
func (f ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}

var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:        "earshot",
		Description: description,
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
)

// Initialize copies the linker-provided values into the build flags. Every
// missing flag is reported and keeps its development default, so callers may
// treat the error as a warning.
func Initialize() error {
	var errs []error
	set := func(dst *string, v, name string) {
		if v == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
			return
		}
		*dst = v
	}
	set(&buildFlags.Name, buildName, "BuildName")
	set(&buildFlags.Time, buildTime, "BuildTime")
	set(&buildFlags.Commit, buildCommit, "BuildCommit")
	set(&buildFlags.Version, buildVersion, "BuildVersion")
	return errors.Join(errs...)
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
