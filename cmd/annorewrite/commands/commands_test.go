package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/annorewrite/cmd/annorewrite/commands"
	"github.com/Sumatoshi-tech/annorewrite/pkg/config"
	"github.com/Sumatoshi-tech/annorewrite/pkg/recipe"
)

const legacySource = `import io.swagger.annotations.ApiResponse;

class A {
    @ApiResponse(code = 200, response = com.example.Donut.class, responseContainer = "List")
    void m() {}
}
`

const migratedLine = "@ApiResponse(content = @io.swagger.v3.oas.annotations.media.Content(array = " +
	"@io.swagger.v3.oas.annotations.media.ArraySchema(uniqueItems = false, schema = " +
	"@io.swagger.v3.oas.annotations.media.Schema(implementation = com.example.Donut.class))), code = 200)"

type result struct {
	err    error
	stdout string
	stderr string
}

func execute(ctx context.Context, t *testing.T, args ...string) result {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "annorewrite.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("run:\n  workers: 2\n"), 0o600))

	cmd := commands.NewRootCommand()

	var stdout, stderr bytes.Buffer

	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := cmd.ExecuteContext(ctx)

	return result{err: err, stdout: stdout.String(), stderr: stderr.String()}
}

func project(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "src", "A.java")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(legacySource), 0o644))

	return dir, path
}

func read(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	cmd := commands.NewRootCommand()
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Subset(t, names, []string{"run", "check", "watch", "recipes", "version"})

	for _, flag := range []string{"config", "verbose", "quiet", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRun_DryRunPrintsDiff(t *testing.T) {
	t.Parallel()

	dir, path := project(t)

	res := execute(context.Background(), t, "run", dir)
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "-import io.swagger.annotations.ApiResponse;")
	assert.Contains(t, res.stdout, "+    "+migratedLine)
	assert.Contains(t, res.stderr, "1 would change")
	assert.Contains(t, res.stderr, "1 annotations rewritten")
	assert.Equal(t, legacySource, read(t, path))
}

func TestRun_WriteThenIdempotent(t *testing.T) {
	t.Parallel()

	dir, path := project(t)

	res := execute(context.Background(), t, "run", "--write", "--no-diff", dir)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Contains(t, read(t, path), migratedLine)
	assert.Contains(t, read(t, path), "import io.swagger.v3.oas.annotations.responses.ApiResponse;")

	again := execute(context.Background(), t, "run", "--write", dir)
	require.NoError(t, again.err)
	assert.Empty(t, again.stdout)
	assert.Contains(t, again.stderr, "0 changed")
}

func TestRun_QuietSuppressesOutput(t *testing.T) {
	t.Parallel()

	dir, _ := project(t)

	res := execute(context.Background(), t, "--quiet", "run", dir)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Empty(t, res.stderr)
}

func TestRun_InvalidFlags(t *testing.T) {
	t.Parallel()

	dir, _ := project(t)

	res := execute(context.Background(), t, "run", "--imports", "star", dir)
	require.ErrorIs(t, res.err, config.ErrInvalidImportMode)

	res = execute(context.Background(), t, "run", "--recipe", "nope", dir)
	require.ErrorIs(t, res.err, recipe.ErrUnknownRecipe)

	res = execute(context.Background(), t, "run", "--write", "--dry-run", dir)
	require.Error(t, res.err)

	res = execute(context.Background(), t, "--verbose", "--quiet", "version")
	require.Error(t, res.err)
}

func TestRun_MissingPath(t *testing.T) {
	t.Parallel()

	res := execute(context.Background(), t, "run", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, res.err)
}

func TestCheck_ReportsPendingRewrites(t *testing.T) {
	t.Parallel()

	dir, path := project(t)

	res := execute(context.Background(), t, "check", dir)
	require.ErrorIs(t, res.err, commands.ErrPendingRewrites)
	assert.Contains(t, res.stdout, path)
	assert.Contains(t, res.stdout, "changed")
	assert.Contains(t, res.stdout, "1 pending")
	assert.Contains(t, res.stdout, "+2 -2")
	assert.Equal(t, legacySource, read(t, path))

	require.NoError(t, execute(context.Background(), t, "run", "--write", dir).err)

	res = execute(context.Background(), t, "check", dir)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "0 pending")
}

func TestCheck_StrictSkipsWithoutResponse(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := "class A {\n    @io.swagger.v3.oas.annotations.responses.ApiResponse(responseContainer = \"List\")\n    void m() {}\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.java"), []byte(src), 0o644))

	res := execute(context.Background(), t, "check", dir)
	require.ErrorIs(t, res.err, commands.ErrPendingRewrites)

	res = execute(context.Background(), t, "check", "--strict", dir)
	require.NoError(t, res.err)
}

func TestWatch_StopsWithContext(t *testing.T) {
	t.Parallel()

	dir, path := project(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := execute(ctx, t, "watch", dir)
	require.NoError(t, res.err)
	assert.Equal(t, legacySource, read(t, path))
}

func TestRecipes_List(t *testing.T) {
	t.Parallel()

	res := execute(context.Background(), t, "recipes", "list")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "swagger.MigrateApiResponses")
	assert.Contains(t, res.stdout, "swagger.ConvertApiResponseContainerToContent")
	assert.Contains(t, res.stdout, "remove_unused_imports")
}

func TestRecipes_ValidateAndList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.yaml")
	invalid := filepath.Join(dir, "invalid.yaml")

	require.NoError(t, os.WriteFile(valid, []byte(`recipes:
  - name: local.DropUnused
    steps:
      - remove_unused_imports: {}
`), 0o600))
	require.NoError(t, os.WriteFile(invalid, []byte("recipes:\n  - name: x\n    steps: []\n"), 0o600))

	res := execute(context.Background(), t, "recipes", "validate", valid)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "is valid (1 recipes)")

	res = execute(context.Background(), t, "recipes", "validate", valid, invalid)
	require.ErrorIs(t, res.err, recipe.ErrInvalidDocument)
	assert.Contains(t, res.stdout, invalid+" is invalid")

	res = execute(context.Background(), t, "recipes", "list", "--recipe-file", valid)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "local.DropUnused")
}

func TestRecipes_Schema(t *testing.T) {
	t.Parallel()

	res := execute(context.Background(), t, "recipes", "schema")
	require.NoError(t, res.err)
	assert.True(t, json.Valid([]byte(res.stdout)))
}

func TestVersion(t *testing.T) {
	t.Parallel()

	res := execute(context.Background(), t, "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "annorewrite ")
	assert.Contains(t, res.stdout, "commit:")
}
