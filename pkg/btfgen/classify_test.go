package btfgen

import (
	"debug/dwarf"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liu-song-6/llvm/pkg/btfgen/dwarfutil"
	"github.com/liu-song-6/llvm/pkg/btfgen/dwtest"
)

func mustBuild(t *testing.T, b *dwtest.Builder) *dwarf.Data {
	d, _, err := b.Build()
	require.NoError(t, err)
	return d
}

func entryAt(t *testing.T, d *dwarf.Data, n *dwtest.Node) *dwarf.Entry {
	e, err := dwarfutil.EntryAt(d, n.Offset())
	require.NoError(t, err)
	return e
}

func TestKindOfBaseType(t *testing.T) {
	cases := []struct {
		name string
		enc  uint64
		want Kind
	}{
		{"signed", dwAteSigned, KindInt},
		{"unsigned", dwAteUnsigned, KindInt},
		{"bool", dwAteBoolean, KindInt},
		{"signed_char", dwAteSignedChar, KindInt},
		{"unsigned_char", dwAteUnsignedChar, KindInt},
		{"float", 0x04, KindUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := dwtest.NewCompileUnit()
			n := b.AddChild(b.Root(), dwarf.TagBaseType, dwtest.U(dwarf.AttrEncoding, c.enc))
			d := mustBuild(t, b)
			require.Equal(t, c.want, KindOf(d, entryAt(t, d, n), nil))
		})
	}
}

func TestKindOfStructVsFwd(t *testing.T) {
	b := dwtest.NewCompileUnit()
	def := b.AddChild(b.Root(), dwarf.TagStructType, dwtest.Str(dwarf.AttrName, "S"))
	decl := b.AddChild(b.Root(), dwarf.TagStructType, dwtest.Str(dwarf.AttrName, "S"), dwtest.Flag(dwarf.AttrDeclaration))
	unionDecl := b.AddChild(b.Root(), dwarf.TagUnionType, dwtest.Flag(dwarf.AttrDeclaration))
	d := mustBuild(t, b)

	require.Equal(t, KindStruct, KindOf(d, entryAt(t, d, def), nil))
	require.Equal(t, KindFwd, KindOf(d, entryAt(t, d, decl), nil))
	require.Equal(t, KindFwd, KindOf(d, entryAt(t, d, unionDecl), nil))
}

func TestKindOfReferenceTags(t *testing.T) {
	b := dwtest.NewCompileUnit()
	c := b.AddChild(b.Root(), dwarf.TagConstType)
	p := b.AddChild(b.Root(), dwarf.TagPointerType)
	r := b.AddChild(b.Root(), dwarf.TagRestrictType)
	v := b.AddChild(b.Root(), dwarf.TagVolatileType)
	td := b.AddChild(b.Root(), dwarf.TagTypedef)
	d := mustBuild(t, b)

	require.Equal(t, KindConst, KindOf(d, entryAt(t, d, c), nil))
	require.Equal(t, KindPtr, KindOf(d, entryAt(t, d, p), nil))
	require.Equal(t, KindRestrict, KindOf(d, entryAt(t, d, r), nil))
	require.Equal(t, KindVolatile, KindOf(d, entryAt(t, d, v), nil))
	require.Equal(t, KindTypedef, KindOf(d, entryAt(t, d, td), nil))
}

func TestKindOfSubprogramAndSubroutine(t *testing.T) {
	b := dwtest.NewCompileUnit()
	sub := b.AddChild(b.Root(), dwarf.TagSubprogram)
	proto := b.AddChild(b.Root(), dwarf.TagSubroutineType)
	d := mustBuild(t, b)

	require.Equal(t, KindFunc, KindOf(d, entryAt(t, d, sub), nil))
	require.Equal(t, KindFuncProto, KindOf(d, entryAt(t, d, proto), nil))
}

func TestKindOfVariableArrayVsBare(t *testing.T) {
	b := dwtest.NewCompileUnit()
	elem := b.AddChild(b.Root(), dwarf.TagBaseType, dwtest.Str(dwarf.AttrName, "int"))
	arr := b.AddChild(b.Root(), dwarf.TagArrayType, dwtest.Ref(dwarf.AttrType, elem))
	arrVar := b.AddChild(b.Root(), dwarf.TagVariable, dwtest.Ref(dwarf.AttrType, arr))
	bareVar := b.AddChild(b.Root(), dwarf.TagVariable, dwtest.Ref(dwarf.AttrType, elem))
	d := mustBuild(t, b)

	require.Equal(t, KindArray, KindOf(d, entryAt(t, d, arrVar), nil))
	require.Equal(t, KindUnknown, KindOf(d, entryAt(t, d, bareVar), nil))
	// Standalone array_type DIEs are never classified on their own (§9.2).
	require.Equal(t, KindUnknown, KindOf(d, entryAt(t, d, arr), nil))
}

func TestShouldSkipUnsupportedAndVoidPointer(t *testing.T) {
	b := dwtest.NewCompileUnit()
	float := b.AddChild(b.Root(), dwarf.TagBaseType, dwtest.U(dwarf.AttrEncoding, 0x04))
	voidPtr := b.AddChild(b.Root(), dwarf.TagPointerType)
	ptrToFloat := b.AddChild(b.Root(), dwarf.TagPointerType, dwtest.Ref(dwarf.AttrType, float))
	d := mustBuild(t, b)

	require.True(t, ShouldSkip(d, entryAt(t, d, float), nil))
	require.False(t, ShouldSkip(d, entryAt(t, d, voidPtr), nil), "void pointer must be kept per the §9.5 decision")
	require.True(t, ShouldSkip(d, entryAt(t, d, ptrToFloat), nil), "pointer to an unsupported type is still skipped")
}

func TestShouldSkipCyclicPointerIsNotSkipped(t *testing.T) {
	b := dwtest.NewCompileUnit()
	s := b.AddChild(b.Root(), dwarf.TagStructType, dwtest.Str(dwarf.AttrName, "S"))
	p := b.AddChild(b.Root(), dwarf.TagPointerType, dwtest.Ref(dwarf.AttrType, s))
	b.AddChild(s, dwarf.TagMember, dwtest.Str(dwarf.AttrName, "next"), dwtest.Ref(dwarf.AttrType, p))
	d := mustBuild(t, b)

	require.False(t, ShouldSkip(d, entryAt(t, d, s), nil))
	require.False(t, ShouldSkip(d, entryAt(t, d, p), nil))
}
