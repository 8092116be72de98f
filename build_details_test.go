package drip

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	v := Version()
	assert.NotEmpty(t, v)
	assert.True(t, v == "dev" || strings.HasPrefix(v, "v"),
		"Version() should be 'dev' or start with 'v', got: %s", v)
}

func TestGoVersion(t *testing.T) {
	assert.Equal(t, runtime.Version(), GoVersion())
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	assert.Equal(t, "drip/"+Version(), ua)
	assert.NotContains(t, ua, " ")
}

func TestBuildInfo(t *testing.T) {
	info := BuildInfo()
	for _, label := range []string{"Version:", "Commit:", "Build Time:", "Go Version:"} {
		assert.Contains(t, info, label)
	}
	assert.Contains(t, info, Commit())
	assert.Contains(t, info, BuildTime())
}
