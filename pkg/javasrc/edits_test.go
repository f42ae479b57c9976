package javasrc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/annorewrite/pkg/javasrc"
)

func TestEdits_NoEditsReturnsSource(t *testing.T) {
	t.Parallel()

	src := []byte("class A {}\n")

	out, err := javasrc.NewEdits(src).Bytes()
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestEdits_AppliesInOffsetOrder(t *testing.T) {
	t.Parallel()

	ed := javasrc.NewEdits([]byte("0123456789"))
	ed.Replace(6, 8, "ab")
	ed.Delete(0, 2)
	ed.Insert(4, "X")
	ed.Insert(4, "Y")

	assert.Equal(t, 4, ed.Len())

	out, err := ed.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "23XY45ab89", string(out))
}

func TestEdits_Overlap(t *testing.T) {
	t.Parallel()

	ed := javasrc.NewEdits([]byte("0123456789"))
	ed.Replace(2, 6, "a")
	ed.Replace(4, 8, "b")

	_, err := ed.Bytes()
	require.ErrorIs(t, err, javasrc.ErrOverlappingEdit)
}

func TestEdits_DeleteLine(t *testing.T) {
	t.Parallel()

	src := []byte("import a.B;  \nimport c.D;\nclass X {}\n")

	ed := javasrc.NewEdits(src)
	ed.DeleteLine(javasrc.Span{Start: 0, End: 11})

	out, err := ed.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "import c.D;\nclass X {}\n", string(out))
}
