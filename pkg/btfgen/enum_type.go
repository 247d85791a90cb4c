package btfgen

import (
	"debug/dwarf"
	"fmt"

	"github.com/liu-song-6/llvm/pkg/btfgen/dwarfutil"
)

type enumerator struct {
	die     *dwarf.Entry
	nameOff uint32
	value   int32
}

// enumType is the ENUM kind (§4.B). Its vlen and the enumerator DIEs
// themselves are fixed at shape time (children don't change after
// registration); only the name offsets need the completion pass.
type enumType struct {
	typeCommon

	byteSize    uint32
	enumerators []enumerator
}

func newEnumType(id uint32, d *dwarf.Data, die *dwarf.Entry) (*enumType, error) {
	byteSize, _ := dwarfutil.Int64Attr(die, dwarf.AttrByteSize)
	children, err := dwarfutil.ChildrenByTag(d, die, dwarf.TagEnumerator)
	if err != nil {
		return nil, fmt.Errorf("btfgen: enumerators of %#x: %w", die.Offset, err)
	}
	enumerators := make([]enumerator, len(children))
	for i, c := range children {
		v, _ := dwarfutil.Int64Attr(c, dwarf.AttrConstValue)
		enumerators[i] = enumerator{die: c, value: int32(v)}
	}
	return &enumType{
		typeCommon:  typeCommon{id: id, kind: KindEnum, die: die},
		byteSize:    uint32(byteSize),
		enumerators: enumerators,
	}, nil
}

func (t *enumType) Complete(ctx *Context) error {
	if err := checkOverflow("ENUM vlen", uint64(len(t.enumerators)), btfMaxVlen); err != nil {
		return err
	}
	t.nameOff = ctx.addName(resolveName(t.die))
	for i := range t.enumerators {
		t.enumerators[i].nameOff = ctx.addName(resolveName(t.enumerators[i].die))
	}
	return nil
}

func (t *enumType) EncodedSize() uint32 {
	return headerSize + 8*uint32(len(t.enumerators))
}

func (t *enumType) Emit(w Sink) error {
	info := infoWord(KindEnum, uint16(len(t.enumerators)), false)
	if err := writeHeader(w, t.nameOff, info, t.byteSize); err != nil {
		return err
	}
	for _, e := range t.enumerators {
		if err := w.WriteU32(e.nameOff); err != nil {
			return fmt.Errorf("btfgen: writing enumerator name_off: %w", err)
		}
		if err := w.WriteU32(uint32(e.value)); err != nil {
			return fmt.Errorf("btfgen: writing enumerator value: %w", err)
		}
	}
	return nil
}

func (t *enumType) debugLine(strings stringReader) string {
	return fmt.Sprintf("[%d] ENUM '%s' size=%d vlen=%d", t.id, strings.Get(t.nameOff), t.byteSize, len(t.enumerators))
}
