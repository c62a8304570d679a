package vtfunc

import (
	"github.com/maloquacious/semver"
)

var (
	version = semver.Version{
		Major: 0,
		Minor: 2,
		Patch: 2,
		Build: semver.Commit(),
	}
)

// Version returns the module version, with the VCS commit as build metadata.
func Version() semver.Version {
	return version
}
