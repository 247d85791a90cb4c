package btfgen

import (
	"debug/dwarf"
	"fmt"

	"github.com/liu-song-6/llvm/pkg/btfgen/dwarfutil"
)

type member struct {
	die       *dwarf.Entry
	nameOff   uint32
	typeID    uint32
	bitOffset uint32
}

// structType is the STRUCT/UNION kind (§4.B). Member DIEs, like an enum's
// enumerators, are fixed at shape time; only name offsets and the
// member's referenced type id need the completion pass.
type structType struct {
	typeCommon

	byteSize uint32
	members  []member
}

func newStructType(id uint32, kind Kind, d *dwarf.Data, die *dwarf.Entry) (*structType, error) {
	byteSize, _ := dwarfutil.Int64Attr(die, dwarf.AttrByteSize)
	children, err := dwarfutil.ChildrenByTag(d, die, dwarf.TagMember)
	if err != nil {
		return nil, fmt.Errorf("btfgen: members of %#x: %w", die.Offset, err)
	}
	members := make([]member, len(children))
	for i, c := range children {
		members[i] = member{die: c}
	}
	return &structType{
		typeCommon: typeCommon{id: id, kind: kind, die: die},
		byteSize:   uint32(byteSize),
		members:    members,
	}, nil
}

func (t *structType) Complete(ctx *Context) error {
	if err := checkOverflow(t.kind.String()+" vlen", uint64(len(t.members)), btfMaxVlen); err != nil {
		return err
	}
	t.nameOff = ctx.addName(resolveName(t.die))
	for i := range t.members {
		m := &t.members[i]
		m.nameOff = ctx.addName(resolveName(m.die))
		if off, ok := dwarfutil.RefAttr(m.die, dwarf.AttrType); ok {
			m.typeID = ctx.idOfOffset(off)
		}
		if bitOff, ok := dwarfutil.Int64Attr(m.die, dwarf.AttrBitOffset); ok {
			m.bitOffset = uint32(bitOff)
		}
	}
	return nil
}

func (t *structType) EncodedSize() uint32 {
	return headerSize + 12*uint32(len(t.members))
}

func (t *structType) Emit(w Sink) error {
	info := infoWord(t.kind, uint16(len(t.members)), false)
	if err := writeHeader(w, t.nameOff, info, t.byteSize); err != nil {
		return err
	}
	for _, m := range t.members {
		if err := w.WriteU32(m.nameOff); err != nil {
			return fmt.Errorf("btfgen: writing member name_off: %w", err)
		}
		if err := w.WriteU32(m.typeID); err != nil {
			return fmt.Errorf("btfgen: writing member type: %w", err)
		}
		if err := w.WriteU32(m.bitOffset); err != nil {
			return fmt.Errorf("btfgen: writing member bit_offset: %w", err)
		}
	}
	return nil
}

func (t *structType) debugLine(strings stringReader) string {
	return fmt.Sprintf("[%d] %s '%s' size=%d vlen=%d", t.id, t.kind, strings.Get(t.nameOff), t.byteSize, len(t.members))
}
