package btfgen

import (
	"debug/dwarf"
	"fmt"

	"github.com/liu-song-6/llvm/pkg/btfgen/dwarfutil"
)

// Sink is the host's byte-sink contract (§6): the ability to emit
// little-endian integers into whatever section is currently selected.
// BufferSectionWriter (wire.go) is the concrete implementation this
// module ships; a host embedding the translator elsewhere (an assembly
// printer, say) would implement Sink over its own section-switching
// primitive instead.
type Sink interface {
	WriteU8(v uint8) error
	WriteU16(v uint16) error
	WriteU32(v uint32) error
	WriteBytes(p []byte) error
}

// Type is the core polymorphic record (§3): a tagged variant over BTF
// kind, constructed in two phases. It is grounded on the sum-type-via-
// marker-method pattern pkg/dyninst/ir uses for its op/type nodes
// (e.g. the irOp() marker on ir.Expression's variants): every concrete
// type here embeds typeCommon and implements typeVariant so the set of
// kinds is closed and switchable without a run-time type assertion at
// every call site.
type Type interface {
	ID() uint32
	Kind() Kind
	DIE() *dwarf.Entry
	NameOff() uint32

	// Complete runs the completion phase (§4.B): resolving string-table
	// additions and DIE-to-id cross references now that every entry has
	// been assigned an id. It must only be called once, after every
	// compile unit has been registered.
	Complete(ctx *Context) error

	// EncodedSize returns the number of bytes Emit will write; it must
	// equal the common 12-byte header plus whatever kind-specific
	// trailer this entry carries (§4.B, §8 property 3).
	EncodedSize() uint32

	// Emit writes this entry's wire representation (§6) to w. It must
	// only be called after Complete.
	Emit(w Sink) error

	// debugLine renders one human-readable line for WriteDebugDump.
	debugLine(strings stringReader) string

	typeVariant()
}

// stringReader is the narrow read side of the string table Type.debugLine
// implementations need; it exists so debug dumping doesn't require
// exposing strtab.Table's mutation methods to this package's Type values.
type stringReader interface {
	Get(off uint32) string
}

// typeCommon holds the fields every kind shares: the dense id assigned at
// registration, the kind tag, the resolved name offset (set during
// completion for every kind that can carry a name), and a non-owning
// back-reference to the originating DIE (§9's "Non-owning DIE back-
// reference" note).
type typeCommon struct {
	id      uint32
	kind    Kind
	nameOff uint32
	die     *dwarf.Entry
}

func (c *typeCommon) ID() uint32        { return c.id }
func (c *typeCommon) Kind() Kind        { return c.kind }
func (c *typeCommon) DIE() *dwarf.Entry { return c.die }
func (c *typeCommon) NameOff() uint32   { return c.nameOff }
func (c *typeCommon) typeVariant()      {}

// writeHeader writes the 12-byte common prefix every type record starts
// with (§6): name_off, info, size_or_type.
func writeHeader(w Sink, nameOff, info, sizeOrType uint32) error {
	if err := w.WriteU32(nameOff); err != nil {
		return fmt.Errorf("btfgen: writing name_off: %w", err)
	}
	if err := w.WriteU32(info); err != nil {
		return fmt.Errorf("btfgen: writing info: %w", err)
	}
	if err := w.WriteU32(sizeOrType); err != nil {
		return fmt.Errorf("btfgen: writing size_or_type: %w", err)
	}
	return nil
}

const headerSize = 12

// resolveName reads DW_AT_name off die, returning "" if absent. Used by
// every kind's completion phase that assigns a name_off.
func resolveName(die *dwarf.Entry) string {
	name, _ := dwarfutil.StringAttr(die, dwarf.AttrName)
	return name
}
