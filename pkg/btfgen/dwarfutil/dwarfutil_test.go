package dwarfutil_test

import (
	"debug/dwarf"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liu-song-6/llvm/pkg/btfgen/dwarfutil"
	"github.com/liu-song-6/llvm/pkg/btfgen/dwtest"
)

func TestAttrAndMaybeAttr(t *testing.T) {
	b := dwtest.NewCompileUnit()
	intDie := b.AddChild(b.Root(), dwarf.TagBaseType,
		dwtest.Str(dwarf.AttrName, "int"),
		dwtest.U(dwarf.AttrByteSize, 4),
	)
	d, _, err := b.Build()
	require.NoError(t, err)

	entry, err := dwarfutil.EntryAt(d, intDie.Offset())
	require.NoError(t, err)

	name, ok := dwarfutil.StringAttr(entry, dwarf.AttrName)
	require.True(t, ok)
	require.Equal(t, "int", name)

	size, ok := dwarfutil.Int64Attr(entry, dwarf.AttrByteSize)
	require.True(t, ok)
	require.Equal(t, int64(4), size)

	_, ok = dwarfutil.StringAttr(entry, dwarf.AttrDeclaration)
	require.False(t, ok)
}

func TestHasAttrDetectsFlagPresent(t *testing.T) {
	b := dwtest.NewCompileUnit()
	decl := b.AddChild(b.Root(), dwarf.TagStructType, dwtest.Flag(dwarf.AttrDeclaration))
	notDecl := b.AddChild(b.Root(), dwarf.TagStructType)
	d, _, err := b.Build()
	require.NoError(t, err)

	declEntry, err := dwarfutil.EntryAt(d, decl.Offset())
	require.NoError(t, err)
	require.True(t, dwarfutil.HasAttr(declEntry, dwarf.AttrDeclaration))

	notDeclEntry, err := dwarfutil.EntryAt(d, notDecl.Offset())
	require.NoError(t, err)
	require.False(t, dwarfutil.HasAttr(notDeclEntry, dwarf.AttrDeclaration))
}

func TestChildrenAndChildrenByTag(t *testing.T) {
	b := dwtest.NewCompileUnit()
	structDie := b.AddChild(b.Root(), dwarf.TagStructType, dwtest.Str(dwarf.AttrName, "S"))
	b.AddChild(structDie, dwarf.TagMember, dwtest.Str(dwarf.AttrName, "a"))
	b.AddChild(structDie, dwarf.TagMember, dwtest.Str(dwarf.AttrName, "b"))
	d, _, err := b.Build()
	require.NoError(t, err)

	structEntry, err := dwarfutil.EntryAt(d, structDie.Offset())
	require.NoError(t, err)

	children, err := dwarfutil.Children(d, structEntry)
	require.NoError(t, err)
	require.Len(t, children, 2)

	members, err := dwarfutil.ChildrenByTag(d, structEntry, dwarf.TagMember)
	require.NoError(t, err)
	require.Len(t, members, 2)
	name0, _ := dwarfutil.StringAttr(members[0], dwarf.AttrName)
	require.Equal(t, "a", name0)
}

func TestChildrenOfLeafIsEmpty(t *testing.T) {
	b := dwtest.NewCompileUnit()
	leaf := b.AddChild(b.Root(), dwarf.TagBaseType, dwtest.Str(dwarf.AttrName, "int"))
	d, _, err := b.Build()
	require.NoError(t, err)

	leafEntry, err := dwarfutil.EntryAt(d, leaf.Offset())
	require.NoError(t, err)

	children, err := dwarfutil.Children(d, leafEntry)
	require.NoError(t, err)
	require.Empty(t, children)
}

func TestRefAttrFollowsToTarget(t *testing.T) {
	b := dwtest.NewCompileUnit()
	intDie := b.AddChild(b.Root(), dwarf.TagBaseType, dwtest.Str(dwarf.AttrName, "int"))
	ptrDie := b.AddChild(b.Root(), dwarf.TagPointerType, dwtest.Ref(dwarf.AttrType, intDie))
	d, _, err := b.Build()
	require.NoError(t, err)

	ptrEntry, err := dwarfutil.EntryAt(d, ptrDie.Offset())
	require.NoError(t, err)

	off, ok := dwarfutil.RefAttr(ptrEntry, dwarf.AttrType)
	require.True(t, ok)
	require.Equal(t, intDie.Offset(), off)

	target, err := dwarfutil.EntryAt(d, off)
	require.NoError(t, err)
	name, _ := dwarfutil.StringAttr(target, dwarf.AttrName)
	require.Equal(t, "int", name)
}
