package btfgen

// Kind is a BTF type kind, encoded in bits 24-27 of a type record's info
// word. The numeric values match the real BTF_KIND_* constants so that
// Context.Emit produces bytes a real BTF consumer (see cmd/btfgen verify,
// which round-trips them through github.com/cilium/ebpf/btf) accepts.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInt
	KindPtr
	KindArray
	KindStruct
	KindUnion
	KindEnum
	KindFwd
	KindTypedef
	KindVolatile
	KindConst
	KindRestrict
	KindFunc
	KindFuncProto
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "UNKN"
	case KindInt:
		return "INT"
	case KindPtr:
		return "PTR"
	case KindArray:
		return "ARRAY"
	case KindStruct:
		return "STRUCT"
	case KindUnion:
		return "UNION"
	case KindEnum:
		return "ENUM"
	case KindFwd:
		return "FWD"
	case KindTypedef:
		return "TYPEDEF"
	case KindVolatile:
		return "VOLATILE"
	case KindConst:
		return "CONST"
	case KindRestrict:
		return "RESTRICT"
	case KindFunc:
		return "FUNC"
	case KindFuncProto:
		return "FUNC_PROTO"
	default:
		return "UNKNOWN_KIND"
	}
}

// IsReferenceKind reports whether k is one of the reference kinds (PTR,
// CONST, VOLATILE, RESTRICT, TYPEDEF, FWD, FUNC). FUNC_PROTO is not
// included, although its size_or_type also carries a type id (the return
// type's).
func (k Kind) IsReferenceKind() bool {
	switch k {
	case KindPtr, KindConst, KindVolatile, KindRestrict, KindTypedef, KindFwd, KindFunc:
		return true
	default:
		return false
	}
}

// infoWord packs vlen and kind into a BTF type record's info field. The
// kind_flag bit (bit 31) is left to callers that need it (FWD's
// struct/union distinction).
func infoWord(kind Kind, vlen uint16, kindFlag bool) uint32 {
	w := uint32(kind)<<24 | uint32(vlen)
	if kindFlag {
		w |= 1 << 31
	}
	return w
}
