// Package version reports the build identity of the tos binaries.
package version

import (
	"fmt"
	"runtime"
)

// Set by the linker at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// LinkProtocol is the revision of the CBOR packet format spoken on /v1/link.
// Peers with a different revision are not guaranteed to interoperate.
const LinkProtocol = 1

// Info describes the running build.
type Info struct {
	Version      string `json:"version"`
	Commit       string `json:"commit"`
	BuildDate    string `json:"buildDate"`
	LinkProtocol int    `json:"linkProtocol"`
	GoVersion    string `json:"goVersion"`
	Platform     string `json:"platform"`
}

// GetInfo returns the build information of this binary.
func GetInfo() Info {
	return Info{
		Version:      Version,
		Commit:       Commit,
		BuildDate:    BuildDate,
		LinkProtocol: LinkProtocol,
		GoVersion:    runtime.Version(),
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Short returns "version (commit)".
func (i Info) Short() string {
	return fmt.Sprintf("%s (%s)", i.Version, i.Commit)
}

func (i Info) String() string {
	return fmt.Sprintf(
		"Version:\t%s\nCommit:\t\t%s\nBuild Date:\t%s\nLink Protocol:\t%d\nGo Version:\t%s\nPlatform:\t%s",
		i.Version, i.Commit, i.BuildDate, i.LinkProtocol, i.GoVersion, i.Platform,
	)
}
