package btfgen

import (
	"debug/dwarf"
	"fmt"
)

// fwdType is the FWD kind (§4.B): a forward declaration of a struct or
// union that was never defined in this compile unit (DW_AT_declaration
// set). Per the supplemented §9.3 decision, the struct/union distinction
// is recorded in info's kind_flag bit so a modern BTF reader need not
// guess.
type fwdType struct {
	typeCommon

	isUnion bool
}

func newFwdType(id uint32, die *dwarf.Entry) *fwdType {
	return &fwdType{
		typeCommon: typeCommon{id: id, kind: KindFwd, die: die},
		isUnion:    die.Tag == dwarf.TagUnionType,
	}
}

func (t *fwdType) Complete(ctx *Context) error {
	t.nameOff = ctx.addName(resolveName(t.die))
	return nil
}

func (t *fwdType) EncodedSize() uint32 { return headerSize }

func (t *fwdType) Emit(w Sink) error {
	info := infoWord(KindFwd, 0, t.isUnion)
	return writeHeader(w, t.nameOff, info, 0)
}

func (t *fwdType) debugLine(strings stringReader) string {
	kind := "struct"
	if t.isUnion {
		kind = "union"
	}
	return fmt.Sprintf("[%d] FWD %s '%s'", t.id, kind, strings.Get(t.nameOff))
}
