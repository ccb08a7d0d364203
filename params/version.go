package params

import (
	"fmt"
)

// version parts
const (
	VersionMajor = 1  // Major version component of the current release
	VersionMinor = 0  // Minor version component of the current release
	VersionPatch = 0  // Patch version component of the current release
	VersionMeta  = "" // Version metadata to append to the version string
)

const (
	versionStable = "stable"
)

// Version holds the textual version string.
var Version = func() string {
	return fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}()

// VersionWithMeta holds the textual version string including the metadata.
var VersionWithMeta = func() string {
	v := Version
	if VersionMeta != "" {
		v += "-" + VersionMeta
	}
	return v
}()

// VersionWithCommit add git commit and data to version.
func VersionWithCommit(gitCommit, gitDate string) string {
	vsn := VersionWithMeta
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	if (VersionMeta != versionStable) && (gitDate != "") {
		vsn += "-" + gitDate
	}
	return vsn
}

// VersionInfo version info reported by api
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit,omitempty"`
	GitDate   string `json:"gitDate,omitempty"`
	Node      string `json:"node,omitempty"`
}

var gitCommitInfo, gitDateInfo string

// SetGitInfo set git commit info (set via linker flags in main)
func SetGitInfo(gitCommit, gitDate string) {
	gitCommitInfo, gitDateInfo = gitCommit, gitDate
}

// GetVersionInfo get version info
func GetVersionInfo() *VersionInfo {
	return &VersionInfo{
		Version:   VersionWithCommit(gitCommitInfo, gitDateInfo),
		GitCommit: gitCommitInfo,
		GitDate:   gitDateInfo,
	}
}
