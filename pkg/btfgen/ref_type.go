package btfgen

import (
	"debug/dwarf"
	"fmt"

	"github.com/liu-song-6/llvm/pkg/btfgen/dwarfutil"
)

// refType covers the pure reference kinds (§4.B): PTR, CONST, VOLATILE,
// RESTRICT, and TYPEDEF. They share a shape (nothing but the kind tag)
// and a completion (resolve the referent's id; TYPEDEF additionally
// resolves its own name, the one way this family isn't fully uniform).
type refType struct {
	typeCommon

	referentOff    dwarf.Offset
	hasReferentOff bool // false only for PTR-to-void (§9.5)
	referentID     uint32
	named          bool // true for TYPEDEF
}

func newRefType(id uint32, kind Kind, die *dwarf.Entry) *refType {
	off, ok := dwarfutil.RefAttr(die, dwarf.AttrType)
	return &refType{
		typeCommon:     typeCommon{id: id, kind: kind, die: die},
		referentOff:    off,
		hasReferentOff: ok,
		named:          kind == KindTypedef,
	}
}

func (t *refType) Complete(ctx *Context) error {
	if t.named {
		t.nameOff = ctx.addName(resolveName(t.die))
	} else {
		t.nameOff = 0
	}
	if t.hasReferentOff {
		t.referentID = ctx.idOfOffset(t.referentOff)
	} else {
		t.referentID = 0 // void pointee, §9.5
	}
	return nil
}

func (t *refType) EncodedSize() uint32 { return headerSize }

func (t *refType) Emit(w Sink) error {
	info := infoWord(t.kind, 0, false)
	return writeHeader(w, t.nameOff, info, t.referentID)
}

func (t *refType) debugLine(strings stringReader) string {
	return fmt.Sprintf("[%d] %s '%s' -> %d", t.id, t.kind, strings.Get(t.nameOff), t.referentID)
}
