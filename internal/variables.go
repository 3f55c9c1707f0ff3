package internal

import (
	"fmt"
	"runtime"
	"strings"
)

// Name of the daemon binary, used for logger groups and CLI help.
const Name = "devcaded"

const (

	// Printed in place of a build variable that was not injected.
	unset = "(undefined)"

	// Printed instead of a version string for developer builds.
	localBuild = "(local)"

	// Release branch. Builds from it omit the stage suffix.
	releaseBranch = "main"
)

// Injected with -ldflags "-X ...".
var (
	version   = "" // Release version, e.g. "v0.4.1".
	stage     = "" // Branch the build was cut from.
	gitCommit = "" // Short commit hash.

	rawQuiet   = "false" // Start in quiet mode.
	rawDebug   = "false" // Start with debug logging.
	rawVerbose = "false" // Start with verbose log formatting.
)

// Returns the release version without a leading "v", or "(undefined)".
func Version() string {
	v := strings.ToLower(strings.TrimSpace(version))
	if v == "" {
		return unset
	}
	return strings.TrimPrefix(v, "v")
}

// Returns the branch the build was cut from, or "(undefined)".
func Stage() string {
	return orUnset(strings.ToLower(stage))
}

// Returns the commit hash the build was cut from, or "(undefined)".
func GitCommit() string {
	return orUnset(gitCommit)
}

// Reports whether any of the release variables is missing.
//
// Cabinet images are always built by the pipeline, which injects all three.
// Anything else is a developer build.
func IsLocal() bool {
	for _, v := range []string{version, stage, gitCommit} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// Returns "<version>[+<stage>] <commit> [<arch>]" or "(local)".
func VersionString() string {
	if IsLocal() {
		return localBuild
	}

	suffix := ""
	if s := Stage(); s != releaseBranch {
		suffix = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s]", Version(), suffix, GitCommit(), runtime.GOARCH)
}

func orUnset(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unset
	}
	return s
}
