package btfgen

import (
	"debug/dwarf"
	"fmt"

	"github.com/liu-song-6/llvm/pkg/btfgen/dwarfutil"
)

// funcType is the FUNC/FUNC_PROTO kind (§4.B). Real-world BTF has FUNC
// indirect through a FUNC_PROTO type it points at; this translator's
// source spec classifies DW_TAG_subprogram directly to FUNC with its own
// parameter list rather than synthesizing an intermediate FUNC_PROTO, so
// both kinds here carry their own vlen-counted parameter trailer and
// store the return type id directly in size_or_type.
type funcType struct {
	typeCommon

	returnType    dwarf.Offset
	hasReturnType bool
	returnTypeID  uint32
	params        []dwarf.Entry
	paramIDs      []uint32
}

func newFuncType(id uint32, kind Kind, d *dwarf.Data, die *dwarf.Entry) (*funcType, error) {
	off, hasType := dwarfutil.RefAttr(die, dwarf.AttrType)
	children, err := dwarfutil.ChildrenByTag(d, die, dwarf.TagFormalParameter)
	if err != nil {
		return nil, fmt.Errorf("btfgen: parameters of %#x: %w", die.Offset, err)
	}
	params := make([]dwarf.Entry, len(children))
	for i, c := range children {
		params[i] = *c
	}
	return &funcType{
		typeCommon:    typeCommon{id: id, kind: kind, die: die},
		returnType:    off,
		hasReturnType: hasType,
		params:        params,
	}, nil
}

func (t *funcType) Complete(ctx *Context) error {
	if err := checkOverflow(t.kind.String()+" vlen", uint64(len(t.params)), btfMaxVlen); err != nil {
		return err
	}
	if t.hasReturnType {
		t.returnTypeID = ctx.idOfOffset(t.returnType)
	}

	if t.kind == KindFunc {
		name := resolveName(t.die)
		if name == "" && t.hasReturnType {
			if retDie, err := dwarfutil.EntryAt(ctx.d, t.returnType); err == nil {
				name = resolveName(retDie)
			}
		}
		t.nameOff = ctx.addName(name)
	} else {
		t.nameOff = 0
	}

	t.paramIDs = make([]uint32, len(t.params))
	for i := range t.params {
		if off, ok := dwarfutil.RefAttr(&t.params[i], dwarf.AttrType); ok {
			t.paramIDs[i] = ctx.idOfOffset(off)
		}
	}
	return nil
}

func (t *funcType) EncodedSize() uint32 {
	return headerSize + 4*uint32(len(t.paramIDs))
}

func (t *funcType) Emit(w Sink) error {
	info := infoWord(t.kind, uint16(len(t.paramIDs)), false)
	if err := writeHeader(w, t.nameOff, info, t.returnTypeID); err != nil {
		return err
	}
	for _, id := range t.paramIDs {
		if err := w.WriteU32(id); err != nil {
			return fmt.Errorf("btfgen: writing param type: %w", err)
		}
	}
	return nil
}

func (t *funcType) debugLine(strings stringReader) string {
	return fmt.Sprintf("[%d] %s '%s' return=%d vlen=%d", t.id, t.kind, strings.Get(t.nameOff), t.returnTypeID, len(t.paramIDs))
}
