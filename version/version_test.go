package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, LinkProtocol, info.LinkProtocol)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Equal(t, "dev (none)", Info{Version: "dev", Commit: "none"}.Short())
	assert.Contains(t, info.String(), "Link Protocol:\t1")
}
