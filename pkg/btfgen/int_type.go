package btfgen

import (
	"debug/dwarf"
	"fmt"

	"github.com/liu-song-6/llvm/pkg/btfgen/dwarfutil"
)

// intType is the INT kind (§4.B, §6). Its shape phase computes everything
// but the name, since name_off requires the string table which is only
// safe to mutate during completion.
type intType struct {
	typeCommon

	byteSize uint32
	intVal   uint32 // {encoding:4, bit_offset:8, bit_size:8}, already packed
}

// newIntType builds the shape of an INT entry from die. die's tag must be
// DW_TAG_base_type and its encoding must already have been validated by
// KindOf.
func newIntType(id uint32, die *dwarf.Entry) *intType {
	byteSize, _ := dwarfutil.Int64Attr(die, dwarf.AttrByteSize)
	encAttr, _ := dwarfutil.Int64Attr(die, dwarf.AttrEncoding)
	bitSize, hasBitSize := dwarfutil.Int64Attr(die, dwarf.AttrBitSize)
	if !hasBitSize {
		bitSize = byteSize * 8
	}
	bitOffset, _ := dwarfutil.Int64Attr(die, dwarf.AttrBitOffset)

	enc := intEncodingOf(encAttr)
	// Open question §9.1: the source ORs the encoding bits into int_val
	// twice; the evidently-intended behavior is a single OR, which is
	// what a plain bitwise-OR assembly below already does.
	intVal := uint32(enc)<<24 | uint32(bitOffset)<<16 | uint32(bitSize)

	return &intType{
		typeCommon: typeCommon{id: id, kind: KindInt, die: die},
		byteSize:   uint32(byteSize),
		intVal:     intVal,
	}
}

func (t *intType) Complete(ctx *Context) error {
	t.nameOff = ctx.addName(resolveName(t.die))
	return nil
}

func (t *intType) EncodedSize() uint32 { return headerSize + 4 }

func (t *intType) Emit(w Sink) error {
	info := infoWord(KindInt, 0, false)
	if err := writeHeader(w, t.nameOff, info, t.byteSize); err != nil {
		return err
	}
	if err := w.WriteU32(t.intVal); err != nil {
		return fmt.Errorf("btfgen: writing INT trailer: %w", err)
	}
	return nil
}

func (t *intType) debugLine(strings stringReader) string {
	return fmt.Sprintf("[%d] INT '%s' size=%d int_val=%#08x", t.id, strings.Get(t.nameOff), t.byteSize, t.intVal)
}
