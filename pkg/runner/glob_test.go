package runner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/annorewrite/pkg/runner"
)

func TestPatterns(t *testing.T) {
	t.Parallel()

	p, err := runner.NewPatterns([]string{"**/*.java"}, []string{"**/target/**", "gen/*.java"})
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"A.java", true},
		{"src/main/java/A.java", true},
		{"src/main/java/A.kt", false},
		{"module/target/classes/A.java", false},
		{"gen/A.java", false},
		{"gen/sub/A.java", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Included(tt.path), tt.path)
	}

	assert.True(t, p.Excluded("module/target/"))
	assert.False(t, p.Excluded("module/src/"))
}

func TestPatterns_SingleSegmentWildcards(t *testing.T) {
	t.Parallel()

	p, err := runner.NewPatterns([]string{"src/?/*.java"}, nil)
	require.NoError(t, err)

	assert.True(t, p.Included("src/a/A.java"))
	assert.False(t, p.Included("src/ab/A.java"))
	assert.False(t, p.Included("src/a/b/A.java"))
}

func TestPatterns_EmptyIncludesEverything(t *testing.T) {
	t.Parallel()

	p, err := runner.NewPatterns(nil, nil)
	require.NoError(t, err)

	assert.True(t, p.Included("any/path.java"))
}

func TestPatterns_RootAndDirectoryForms(t *testing.T) {
	t.Parallel()

	p, err := runner.NewPatterns([]string{"src/**"}, []string{"build"})
	require.NoError(t, err)

	assert.True(t, p.Included("src/A.java"))
	assert.True(t, p.Included("src/a/b/A.java"))
	assert.False(t, p.Included("test/A.java"))
	assert.True(t, p.Excluded("build/"))
	assert.False(t, p.Excluded("src/build.java"))
}

func TestNewPatterns_Invalid(t *testing.T) {
	t.Parallel()

	_, err := runner.NewPatterns([]string{"src/[a-"}, nil)
	require.Error(t, err)

	_, err = runner.NewPatterns(nil, []string{"{a,b"})
	require.Error(t, err)
}
