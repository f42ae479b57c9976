package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyBuildInfo(t *testing.T) {
	savedVersion, savedCommit, savedDate := Version, Commit, Date

	t.Cleanup(func() { Version, Commit, Date = savedVersion, savedCommit, savedDate })

	Version, Commit, Date = "dev", unknown, unknown

	apply(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})

	assert.Equal(t, "v1.4.0", Version)
	assert.Equal(t, "abc123", Commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", Date)
	assert.Equal(t, "annorewrite v1.4.0 (commit: abc123, built: 2026-01-02T03:04:05Z)", String())
}

func TestApplyKeepsLinkerValues(t *testing.T) {
	savedVersion, savedCommit, savedDate := Version, Commit, Date

	t.Cleanup(func() { Version, Commit, Date = savedVersion, savedCommit, savedDate })

	Version, Commit, Date = "v2.0.0", "fff", unknown

	apply(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	})

	assert.Equal(t, "v2.0.0", Version)
	assert.Equal(t, "fff", Commit)
	assert.Equal(t, unknown, Date)
}
