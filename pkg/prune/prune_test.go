package prune_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/annorewrite/pkg/javasrc"
	"github.com/Sumatoshi-tech/annorewrite/pkg/prune"
)

func parse(t *testing.T, src string) *javasrc.File {
	t.Helper()

	p, err := javasrc.NewParser()
	require.NoError(t, err)

	file, err := p.Parse(context.Background(), "TestClass.java", []byte(src))
	require.NoError(t, err)

	return file
}

func TestRule_MatchesImportPackage(t *testing.T) {
	t.Parallel()

	rule, err := prune.New("java.util")
	require.NoError(t, err)
	assert.Equal(t, "java.util", rule.Pattern())

	imp, ok := rule.Match(parse(t, "import java.util.List;\n\npublic class TestClass {\n}\n"))
	require.True(t, ok)
	assert.Equal(t, "java.util.List", imp.Path)
}

func TestRule_FullMatchOnly(t *testing.T) {
	t.Parallel()

	rule, err := prune.New("java.util")
	require.NoError(t, err)

	_, ok := rule.Match(parse(t, "import java.util.concurrent.Future;\n\nclass A {}\n"))
	assert.False(t, ok)

	_, ok = rule.Match(parse(t, "class A {}\n"))
	assert.False(t, ok)
}

func TestRule_WildcardAndRegex(t *testing.T) {
	t.Parallel()

	rule, err := prune.New(`io\.swagger\..*`)
	require.NoError(t, err)

	imp, ok := rule.Match(parse(t, "import io.swagger.annotations.*;\n\nclass A {}\n"))
	require.True(t, ok)
	assert.True(t, imp.Wildcard)
}

func TestRule_MatchesMemberAndStaticImports(t *testing.T) {
	t.Parallel()

	rule, err := prune.New(`java\.util`)
	require.NoError(t, err)

	tests := []struct {
		name   string
		src    string
		prefix string
	}{
		{"member type", "import java.util.Map.Entry;\n\nclass A {}\n", "java.util.Map.Entry"},
		{"static member", "import static java.util.Collections.emptyList;\n\nclass A {}\n", "java.util.Collections.emptyList"},
		{"static on demand", "import static java.util.Collections.*;\n\nclass A {}\n", "java.util.Collections"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			imp, ok := rule.Match(parse(t, tt.src))
			require.True(t, ok)
			assert.Equal(t, tt.prefix, imp.Path)
			assert.Equal(t, "java.util", imp.Package())
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()

	_, err := prune.New("")
	require.ErrorIs(t, err, prune.ErrEmptyPattern)

	_, err = prune.New("java.(")
	require.Error(t, err)
}
