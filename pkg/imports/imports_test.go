package imports_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/annorewrite/pkg/imports"
	"github.com/Sumatoshi-tech/annorewrite/pkg/javasrc"
)

func parse(t *testing.T, src string) *javasrc.File {
	t.Helper()

	p, err := javasrc.NewParser()
	require.NoError(t, err)

	file, err := p.Parse(context.Background(), "A.java", []byte(src))
	require.NoError(t, err)

	return file
}

func apply(t *testing.T, file *javasrc.File, fn func(*javasrc.Edits)) string {
	t.Helper()

	ed := javasrc.NewEdits(file.Source)
	fn(ed)

	out, err := ed.Bytes()
	require.NoError(t, err)

	return string(out)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	mode, err := imports.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, imports.ModeQualify, mode)

	mode, err = imports.ParseMode("Import")
	require.NoError(t, err)
	assert.Equal(t, imports.ModeImport, mode)

	_, err = imports.ParseMode("static")
	require.ErrorIs(t, err, imports.ErrUnknownMode)
}

func TestManager_QualifyMode(t *testing.T) {
	t.Parallel()

	file := parse(t, "class A {}\n")
	m := imports.NewManager(file, imports.ModeQualify)

	assert.Equal(t, "io.swagger.v3.oas.annotations.media.Content", m.Reference("io.swagger.v3.oas.annotations.media.Content"))
	assert.Empty(t, m.Added())
}

func TestManager_ImportMode(t *testing.T) {
	t.Parallel()

	src := `package com.example;

import java.util.List;
import com.other.Schema;
import io.swagger.v3.oas.annotations.responses.*;

class A {}
`

	file := parse(t, src)
	m := imports.NewManager(file, imports.ModeImport)

	assert.Equal(t, "Content", m.Reference("io.swagger.v3.oas.annotations.media.Content"))
	assert.Equal(t, "Content", m.Reference("io.swagger.v3.oas.annotations.media.Content"))
	assert.Equal(t, "io.swagger.v3.oas.annotations.media.Schema", m.Reference("io.swagger.v3.oas.annotations.media.Schema"))
	assert.Equal(t, "List", m.Reference("java.util.List"))
	assert.Equal(t, "Donut", m.Reference("com.example.Donut"))
	assert.Equal(t, "String", m.Reference("java.lang.String"))
	assert.Equal(t, "ApiResponse", m.Reference("io.swagger.v3.oas.annotations.responses.ApiResponse"))
	assert.Equal(t, "com.example.other.A", m.Reference("com.example.other.A"))
	assert.Equal(t, "Bare", m.Reference("Bare"))

	assert.Equal(t, []string{"io.swagger.v3.oas.annotations.media.Content"}, m.Added())

	out := apply(t, file, m.Apply)
	assert.Contains(t, out,
		"import io.swagger.v3.oas.annotations.responses.*;\nimport io.swagger.v3.oas.annotations.media.Content;\n\nclass A {}")
}

func TestManager_ApplyWithoutImports(t *testing.T) {
	t.Parallel()

	withPackage := parse(t, "package com.example;\n\nclass A {}\n")
	m := imports.NewManager(withPackage, imports.ModeImport)
	m.Reference("io.swagger.v3.oas.annotations.media.Content")

	assert.Equal(t,
		"package com.example;\n\nimport io.swagger.v3.oas.annotations.media.Content;\n\nclass A {}\n",
		apply(t, withPackage, m.Apply))

	bare := parse(t, "class A {}\n")
	m = imports.NewManager(bare, imports.ModeImport)
	m.Reference("io.swagger.v3.oas.annotations.media.Content")

	assert.Equal(t,
		"import io.swagger.v3.oas.annotations.media.Content;\n\nclass A {}\n",
		apply(t, bare, m.Apply))
}

func TestUnused_WildcardWithNoUsage(t *testing.T) {
	t.Parallel()

	src := `import io.swagger.annotations.*;

class A {
    void method() {}
}
`

	file := parse(t, src)

	unused := imports.Unused(file, nil, nil)
	require.Len(t, unused, 1)

	out := apply(t, file, func(ed *javasrc.Edits) { imports.Remove(ed, unused) })
	assert.Equal(t, "\nclass A {\n    void method() {}\n}\n", out)
}

func TestUnused_WildcardKeptWhenTypesUnaccounted(t *testing.T) {
	t.Parallel()

	src := `import io.swagger.annotations.*;

class A {
    @Api
    void method() {}
}
`

	assert.Empty(t, imports.Unused(parse(t, src), nil, nil))
}

func TestUnused_WildcardKnownTypes(t *testing.T) {
	t.Parallel()

	src := `import io.swagger.annotations.*;
import io.swagger.v3.oas.annotations.responses.*;

class A {
    @ApiResponse(responseCode = "200")
    void method() {}
}
`

	known := func(fqn string) bool {
		return fqn == "io.swagger.v3.oas.annotations.responses.ApiResponse"
	}

	unused := imports.Unused(parse(t, src), known, nil)
	require.Len(t, unused, 1)
	assert.Equal(t, "io.swagger.annotations", unused[0].Path)
}

func TestUnused_SingleTypeAndFilter(t *testing.T) {
	t.Parallel()

	src := `import io.swagger.annotations.ApiResponse;
import io.swagger.annotations.ApiResponses;
import java.util.List;
import static java.util.Collections.emptyList;

class A {
    @ApiResponses
    void method() {}
}
`

	file := parse(t, src)

	all := imports.Unused(file, nil, nil)
	paths := make([]string, len(all))

	for i, imp := range all {
		paths[i] = imp.Path
	}

	assert.Equal(t, []string{"io.swagger.annotations.ApiResponse", "java.util.List", "java.util.Collections.emptyList"}, paths)

	filtered := imports.Unused(file, nil, regexp.MustCompile(`^io\.swagger\.annotations\.`))
	require.Len(t, filtered, 1)
	assert.Equal(t, "io.swagger.annotations.ApiResponse", filtered[0].Path)
}
