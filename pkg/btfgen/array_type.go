package btfgen

import (
	"debug/dwarf"
	"fmt"

	"github.com/liu-song-6/llvm/pkg/btfgen/dwarfutil"
)

// arrayType is the ARRAY kind (§4.B, §9.4). It is registered under a
// DW_TAG_variable DIE, not the DW_TAG_array_type DIE it points at: the
// variable's own name becomes the array's name_off, preserving the
// variable-anchored naming the supplemented §9.4 decision calls for.
// Everything else about the array (element type, index type, element
// count) is read off the array_type DIE the variable refers to, and its
// DW_TAG_subrange_type child.
type arrayType struct {
	typeCommon

	elemType  dwarf.Offset
	hasElem   bool
	elemID    uint32
	indexType dwarf.Offset
	hasIndex  bool
	indexID   uint32
	nelems    uint32
}

// newArrayType builds the shape of an ARRAY entry from a DW_TAG_variable
// DIE. die.Tag must be dwarf.TagVariable; KindOf has already confirmed
// its DW_AT_type resolves to an array_type DIE.
func newArrayType(id uint32, die *dwarf.Entry) *arrayType {
	return &arrayType{typeCommon: typeCommon{id: id, kind: KindArray, die: die}}
}

func (t *arrayType) Complete(ctx *Context) error {
	t.nameOff = ctx.addName(resolveName(t.die))

	arrayDie, ok := variableArrayType(ctx.d, t.die)
	if !ok {
		// KindOf already proved this resolves; a failure here means the
		// DIE tree changed out from under us, which the single-threaded
		// contract (§5) rules out.
		return fmt.Errorf("btfgen: %#x: variable's array_type disappeared during completion", t.die.Offset)
	}

	if off, ok := dwarfutil.RefAttr(arrayDie, dwarf.AttrType); ok {
		t.elemType, t.hasElem = off, true
		t.elemID = ctx.idOfOffset(off)
	}

	subranges, err := dwarfutil.ChildrenByTag(ctx.d, arrayDie, dwarf.TagSubrangeType)
	if err != nil {
		return fmt.Errorf("btfgen: %#x: reading subrange: %w", arrayDie.Offset, err)
	}
	if len(subranges) > 0 {
		sub := subranges[0]
		if count, ok := dwarfutil.Int64Attr(sub, dwarf.AttrCount); ok {
			t.nelems = uint32(count)
		}
		if off, ok := dwarfutil.RefAttr(sub, dwarf.AttrType); ok {
			t.indexType, t.hasIndex = off, true
			t.indexID = ctx.idOfOffset(off)
		}
	}
	return nil
}

func (t *arrayType) EncodedSize() uint32 { return headerSize + 12 }

func (t *arrayType) Emit(w Sink) error {
	info := infoWord(KindArray, 0, false)
	if err := writeHeader(w, t.nameOff, info, 0); err != nil {
		return err
	}
	if err := w.WriteU32(t.elemID); err != nil {
		return fmt.Errorf("btfgen: writing elem_type: %w", err)
	}
	if err := w.WriteU32(t.indexID); err != nil {
		return fmt.Errorf("btfgen: writing index_type: %w", err)
	}
	if err := w.WriteU32(t.nelems); err != nil {
		return fmt.Errorf("btfgen: writing nelems: %w", err)
	}
	return nil
}

func (t *arrayType) debugLine(strings stringReader) string {
	return fmt.Sprintf("[%d] ARRAY '%s' elem=%d index=%d nelems=%d",
		t.id, strings.Get(t.nameOff), t.elemID, t.indexID, t.nelems)
}
