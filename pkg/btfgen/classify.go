package btfgen

import (
	"debug/dwarf"
	"fmt"

	"github.com/liu-song-6/llvm/pkg/btfgen/dwarfutil"
)

// Real DW_ATE_* values. debug/dwarf does not export these as named
// constants, so they are reproduced here from the DWARF spec; irgen's own
// decoding of DW_AT_encoding does the same thing locally rather than
// depending on an unexported stdlib table.
const (
	dwAteBoolean      = 0x02
	dwAteSigned       = 0x05
	dwAteSignedChar   = 0x06
	dwAteUnsigned     = 0x07
	dwAteUnsignedChar = 0x08
)

// IntEncoding is the 4-bit encoding field of a BTF INT type's trailing
// word (§6).
type IntEncoding uint8

const (
	IntEncodingUnsigned IntEncoding = 0
	IntEncodingSigned   IntEncoding = 1 << 0
	IntEncodingChar     IntEncoding = 1 << 1
	IntEncodingBool     IntEncoding = 1 << 2
	// invalidEncoding is the sentinel returned for DW_AT_encoding values
	// BTF's INT kind cannot represent (float, complex, decimal, ...).
	invalidEncoding IntEncoding = 0xFF
)

// intEncodingOf maps a DW_AT_encoding value to the BTF INT encoding bits,
// per §4.C's table. Used both by classification (to reject base_types
// BTF can't represent) and by the INT type's shape phase.
func intEncodingOf(dwAte int64) IntEncoding {
	switch dwAte {
	case dwAteBoolean:
		return IntEncodingBool
	case dwAteSigned:
		return IntEncodingSigned
	case dwAteSignedChar:
		return IntEncodingChar
	case dwAteUnsigned:
		return IntEncodingUnsigned
	case dwAteUnsignedChar:
		return IntEncodingChar
	default:
		return invalidEncoding
	}
}

// KindOf classifies entry per §4.C's kind_of table. d is used to resolve
// the handful of classifications that need to inspect a referenced DIE
// (a variable's DW_AT_type, when deciding ARRAY vs UNKN). diag receives a
// warning for any tag this policy has no opinion about.
func KindOf(d *dwarf.Data, entry *dwarf.Entry, diag *Diagnostics) Kind {
	switch entry.Tag {
	case dwarf.TagBaseType:
		enc, ok := dwarfutil.Int64Attr(entry, dwarf.AttrEncoding)
		if !ok || intEncodingOf(enc) == invalidEncoding {
			return KindUnknown
		}
		return KindInt
	case dwarf.TagConstType:
		return KindConst
	case dwarf.TagPointerType:
		return KindPtr
	case dwarf.TagRestrictType:
		return KindRestrict
	case dwarf.TagVolatileType:
		return KindVolatile
	case dwarf.TagStructType, dwarf.TagClassType:
		if dwarfutil.HasAttr(entry, dwarf.AttrDeclaration) {
			return KindFwd
		}
		return KindStruct
	case dwarf.TagUnionType:
		if dwarfutil.HasAttr(entry, dwarf.AttrDeclaration) {
			return KindFwd
		}
		return KindUnion
	case dwarf.TagEnumerationType:
		return KindEnum
	case dwarf.TagTypedef:
		return KindTypedef
	case dwarf.TagSubprogram:
		return KindFunc
	case dwarf.TagSubroutineType:
		return KindFuncProto
	case dwarf.TagVariable:
		if arrayEntry, ok := variableArrayType(d, entry); ok && arrayEntry != nil {
			return KindArray
		}
		return KindUnknown
	case dwarf.TagArrayType, dwarf.TagCompileUnit, dwarf.TagFormalParameter,
		dwarf.TagInlinedSubroutine, dwarf.TagLexDwarfBlock:
		return KindUnknown
	default:
		if diag != nil {
			diag.unsupportedTag(fmt.Sprintf("%#x", entry.Offset), entry.Tag.String())
		}
		return KindUnknown
	}
}

// variableArrayType resolves a DW_TAG_variable's DW_AT_type and reports
// whether it names a DW_TAG_array_type DIE, per the ARRAY case of
// kind_of. It returns the array DIE itself, from which the ARRAY entry's
// completion phase reads the element type and subrange.
func variableArrayType(d *dwarf.Data, variable *dwarf.Entry) (*dwarf.Entry, bool) {
	off, ok := dwarfutil.RefAttr(variable, dwarf.AttrType)
	if !ok {
		return nil, false
	}
	target, err := dwarfutil.EntryAt(d, off)
	if err != nil {
		return nil, false
	}
	if target.Tag != dwarf.TagArrayType {
		return nil, false
	}
	return target, true
}

// ShouldSkip implements §4.C's should_skip predicate: an entry is skipped
// if it is itself UNKN, or if it is a reference kind whose pointee is
// missing or itself skippable. Per §9.5, PTR is the one reference kind
// exempted from "missing pointee means skip": a pointer with no
// DW_AT_type (void*) is kept and later emitted with type=0.
func ShouldSkip(d *dwarf.Data, entry *dwarf.Entry, diag *Diagnostics) bool {
	return shouldSkip(d, entry, diag, make(map[dwarf.Offset]bool))
}

func shouldSkip(d *dwarf.Data, entry *dwarf.Entry, diag *Diagnostics, visiting map[dwarf.Offset]bool) bool {
	k := KindOf(d, entry, diag)
	if k == KindUnknown {
		return true
	}
	if !k.IsReferenceKind() || k == KindFwd || k == KindFunc {
		return false
	}
	off, hasType := dwarfutil.RefAttr(entry, dwarf.AttrType)
	if !hasType {
		// Missing pointee. PTR keeps it (void*, §9.5); every other
		// reference kind has no sensible "void" rendering and is skipped.
		return k != KindPtr
	}
	if visiting[entry.Offset] {
		// A reference cycle was already proven reachable by an ancestor
		// call; do not loop forever re-deriving the same answer.
		return false
	}
	visiting[entry.Offset] = true
	referent, err := dwarfutil.EntryAt(d, off)
	if err != nil {
		return k != KindPtr
	}
	return shouldSkip(d, referent, diag, visiting)
}
