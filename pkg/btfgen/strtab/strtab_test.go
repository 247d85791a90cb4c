package strtab

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableAddOffsetsAreCumulative(t *testing.T) {
	tbl := New()
	tbl.Add("") // reserve offset 0, as the context does during finish
	off1 := tbl.Add("int")
	off2 := tbl.Add("char")
	off3 := tbl.Add("int") // no dedup: same content, new offset

	require.Equal(t, uint32(1), off1)
	require.Equal(t, uint32(5), off2)
	require.Equal(t, uint32(10), off3)
	require.NotEqual(t, off1, off3)
}

func TestTableGetRoundTrips(t *testing.T) {
	tbl := New()
	empty := tbl.Add("")
	foo := tbl.Add("foo")
	bar := tbl.Add("bar")

	require.Equal(t, "", tbl.Get(empty))
	require.Equal(t, "foo", tbl.Get(foo))
	require.Equal(t, "bar", tbl.Get(bar))
}

func TestTableEmitWritesNulTerminatedStrings(t *testing.T) {
	tbl := New()
	tbl.Add("")
	tbl.Add("abc")

	var buf bytes.Buffer
	require.NoError(t, tbl.Emit(&buf))
	require.Equal(t, []byte{0, 'a', 'b', 'c', 0}, buf.Bytes())
	require.Equal(t, uint32(5), tbl.Size())
}

func TestDedupReturnsSameOffsetForRepeatedContent(t *testing.T) {
	d := NewDedup()
	d.Add("")
	first := d.Add("int")
	second := d.Add("int")
	third := d.Add("char")

	require.Equal(t, first, second)
	require.NotEqual(t, first, third)
	require.Equal(t, "int", d.Get(first))
}
