package javasrc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/annorewrite/pkg/annotation"
	"github.com/Sumatoshi-tech/annorewrite/pkg/javasrc"
)

const controllerSource = `package org.openrewrite.openapi.swagger;

import io.swagger.v3.oas.annotations.responses.ApiResponse;
import io.swagger.v3.oas.annotations.responses.ApiResponses;
import java.util.*;
import static java.util.Collections.emptyList;

class A {
    @ApiResponses(value = {
        @ApiResponse(response = Donut.class, responseContainer = "List")})
    void method() {}

    @Deprecated
    void old() {}
}
`

func newParser(t *testing.T, opts ...javasrc.Option) *javasrc.Parser {
	t.Helper()

	p, err := javasrc.NewParser(opts...)
	require.NoError(t, err)

	return p
}

func TestParse_PackageAndImports(t *testing.T) {
	t.Parallel()

	file, err := newParser(t).Parse(context.Background(), "A.java", []byte(controllerSource))
	require.NoError(t, err)

	assert.False(t, file.HasErrors)
	assert.Equal(t, "org.openrewrite.openapi.swagger", file.Package)
	require.Len(t, file.Imports, 4)

	assert.Equal(t, "io.swagger.v3.oas.annotations.responses.ApiResponse", file.Imports[0].Path)
	assert.Equal(t, "ApiResponse", file.Imports[0].SimpleName())
	assert.Equal(t, "io.swagger.v3.oas.annotations.responses", file.Imports[0].Package())

	assert.True(t, file.Imports[2].Wildcard)
	assert.Equal(t, "java.util", file.Imports[2].Package())
	assert.Equal(t, "import java.util.*;", file.Imports[2].String())

	assert.True(t, file.Imports[3].Static)
	assert.Equal(t, "java.util", file.Imports[3].Package())
	assert.Equal(t, "import static java.util.Collections.emptyList;",
		string(file.Source[file.Imports[3].Span.Start:file.Imports[3].Span.End]))
}

func TestParse_OutermostAnnotations(t *testing.T) {
	t.Parallel()

	file, err := newParser(t).Parse(context.Background(), "A.java", []byte(controllerSource))
	require.NoError(t, err)

	require.Len(t, file.Annotations, 2)

	outer := file.Annotations[0]
	assert.Equal(t, "ApiResponses", outer.Node.Name)
	assert.Equal(t, "io.swagger.v3.oas.annotations.responses.ApiResponses", outer.Node.Type)
	assert.Equal(t, outer.Node.Source, string(file.Source[outer.Span.Start:outer.Span.End]))

	require.Len(t, outer.Node.Args, 1)
	assert.Equal(t, "value", outer.Node.Args[0].Name)

	arr, ok := outer.Node.Args[0].Value.(annotation.Array)
	require.True(t, ok)
	require.Len(t, arr.Elems, 1)

	inner, ok := arr.Elems[0].(*annotation.Annotation)
	require.True(t, ok)
	assert.Equal(t, "io.swagger.v3.oas.annotations.responses.ApiResponse", inner.TypeName())
	require.Len(t, inner.Args, 2)

	cl, ok := inner.Args[0].Value.(annotation.ClassLiteral)
	require.True(t, ok)
	assert.Equal(t, "Donut", cl.Type)
	// java.util.* might supply Donut, so the literal stays as written.
	assert.Empty(t, cl.Resolved)
	assert.Equal(t, "Donut.class", cl.Qualified())

	assert.Equal(t, annotation.Literal{Text: `"List"`}, inner.Args[1].Value)

	marker := file.Annotations[1].Node
	assert.True(t, marker.Marker)
	assert.Equal(t, "java.lang.Deprecated", marker.Type)
	assert.Equal(t, "@Deprecated", marker.Render())
}

func TestParse_DeclarationsAndIdentifiers(t *testing.T) {
	t.Parallel()

	file, err := newParser(t).Parse(context.Background(), "A.java", []byte(controllerSource))
	require.NoError(t, err)

	require.Len(t, file.Declarations, 1)
	assert.Equal(t, "class", file.Declarations[0].Kind)
	assert.Equal(t, "A", file.Declarations[0].Name)
	assert.True(t, file.Declarations[0].TopLevel)
	assert.True(t, file.Declares("A"))

	assert.True(t, file.Uses("ApiResponse"))
	assert.True(t, file.Uses("Donut"))
	assert.False(t, file.Uses("emptyList"))
	assert.Equal(t, file.Imports[3].Span.End, file.ImportsEnd())
}

func TestParse_SyntaxError(t *testing.T) {
	t.Parallel()

	file, err := newParser(t).Parse(context.Background(), "Broken.java", []byte("class Broken { void m( }"))
	require.NoError(t, err)
	assert.True(t, file.HasErrors)
}

func TestParse_CommentsInsideArguments(t *testing.T) {
	t.Parallel()

	src := `class A {
    @ApiResponse(/* legacy */ response = Donut.class, // container
        responseContainer = "List")
    void m() {}
}
`

	file, err := newParser(t).Parse(context.Background(), "A.java", []byte(src))
	require.NoError(t, err)
	require.Len(t, file.Annotations, 1)

	args := file.Annotations[0].Node.Args
	require.Len(t, args, 2)
	assert.Equal(t, "response", args[0].Name)
	assert.Equal(t, "responseContainer", args[1].Name)
}

func TestParse_KnownTypesThroughWildcard(t *testing.T) {
	t.Parallel()

	src := `package com.example;

import io.swagger.annotations.*;

class A {
    @ApiResponse(code = 200)
    @Local
    void m() {}
}
`

	p := newParser(t, javasrc.WithKnownTypes("io.swagger.annotations.ApiResponse"))
	assert.True(t, p.Known("io.swagger.annotations.ApiResponse"))
	assert.False(t, p.Known("io.swagger.annotations.ApiResponses"))

	file, err := p.Parse(context.Background(), "A.java", []byte(src))
	require.NoError(t, err)
	require.Len(t, file.Annotations, 2)

	assert.Equal(t, "io.swagger.annotations.ApiResponse", file.Annotations[0].Node.Type)
	assert.Equal(t, "Local", file.Annotations[1].Node.Type)
}

func TestParse_MemberTypes(t *testing.T) {
	t.Parallel()

	src := `package com.app.api;

class A {
    @ApiResponse(response = Item.class, responseContainer = "List")
    void m() {}

    static class Item {
        enum Kind { SMALL }
    }
}
`

	file, err := newParser(t).Parse(context.Background(), "A.java", []byte(src))
	require.NoError(t, err)

	require.Len(t, file.Declarations, 3)
	assert.Equal(t, "A", file.Declarations[0].Path())
	assert.Equal(t, "A.Item", file.Declarations[1].Path())
	assert.False(t, file.Declarations[1].TopLevel)
	assert.Equal(t, "A.Item.Kind", file.Declarations[2].Path())

	require.Len(t, file.Annotations, 1)

	cl, ok := file.Annotations[0].Node.Args[0].Value.(annotation.ClassLiteral)
	require.True(t, ok)
	assert.Equal(t, "com.app.api.A.Item", cl.Resolved)
}

func TestParseArgument(t *testing.T) {
	t.Parallel()

	p := newParser(t)

	arg, err := p.ParseArgument(`content = @Content(array = @ArraySchema(uniqueItems = false))`)
	require.NoError(t, err)

	assert.Equal(t, "content", arg.Name)
	assert.Equal(t, `content = @Content(array = @ArraySchema(uniqueItems = false))`, arg.Render())

	content, ok := arg.Value.(*annotation.Annotation)
	require.True(t, ok)
	assert.Equal(t, "Content", content.Name)

	qualified, err := p.ParseArgument(`schema = @io.swagger.v3.oas.annotations.media.Schema(implementation = com.example.Donut.class)`)
	require.NoError(t, err)

	schema, ok := qualified.Value.(*annotation.Annotation)
	require.True(t, ok)
	assert.Equal(t, "io.swagger.v3.oas.annotations.media.Schema", schema.TypeName())
	assert.Equal(t, annotation.ClassLiteral{Type: "com.example.Donut", Resolved: "com.example.Donut"}, schema.Args[0].Value)
}

func TestParseArgument_Rejects(t *testing.T) {
	t.Parallel()

	p := newParser(t)

	for _, src := range []string{
		`content = @Content(array = `,
		`a = 1, b = 2`,
		``,
	} {
		_, err := p.ParseArgument(src)
		require.ErrorIs(t, err, javasrc.ErrFragment, src)
	}
}
