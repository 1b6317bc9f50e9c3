// Package versions provides version information for the entries server.
package versions

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

const unknownStr = "unknown"

// Build information, set with -ldflags
var (
	Version = "dev"
	//nolint:goconst // placeholder replaced at build time
	Commit = unknownStr
	//nolint:goconst // placeholder replaced at build time
	BuildDate = unknownStr
)

// VersionInfo describes the running binary
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersionInfo returns the version information of the running binary
func GetVersionInfo() VersionInfo {
	return buildInfo(Version, Commit, BuildDate, readVCS)
}

// readVCS returns the revision and commit time recorded by the Go toolchain
func readVCS() (revision, modified string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			modified = s.Value
		}
	}
	return revision, modified
}

func buildInfo(version, commit, buildDate string, vcs func() (string, string)) VersionInfo {
	if strings.HasPrefix(version, "dev") {
		revision, modified := vcs()
		if commit == unknownStr && revision != "" {
			commit = revision
		}
		if buildDate == unknownStr && modified != "" {
			buildDate = modified
		}
	}

	if t, err := time.Parse(time.RFC3339, buildDate); err == nil {
		buildDate = t.Format("2006-01-02 15:04:05 MST")
	}

	// Development builds are named after their commit
	if version == "dev" {
		version = fmt.Sprintf("build-%.8s", commit)
	}

	return VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// IsRelease reports whether the version is a semantic version
func IsRelease(version string) bool {
	_, err := semver.NewVersion(version)
	return err == nil
}

// Satisfies reports whether version meets the semver constraint, for
// example ">= 1.2, < 2". Versions that are not semantic (development
// builds) satisfy every constraint.
func Satisfies(version, constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return true, nil
	}
	return c.Check(v), nil
}
