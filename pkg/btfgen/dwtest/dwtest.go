// Package dwtest builds small, synthetic debug/dwarf trees for tests. The
// translator's core packages consume *dwarf.Data/*dwarf.Entry directly (see
// pkg/btfgen/dwarfutil), so exercising them end to end means constructing
// real, parseable DWARF bytes rather than mocking an interface. This
// mirrors in spirit the dwarfbuilder helper used by Delve's own DWARF-
// consuming tests, sized down to exactly the tags, attributes, and forms
// this translator's classifier and type entries care about.
package dwtest

import (
	"bytes"
	"debug/dwarf"
	"encoding/binary"
	"fmt"
)

// form is the subset of DWARF attribute forms this builder can encode.
type form int

const (
	formString form = iota
	formUdata
	formSdata
	formRefAddr
	formFlagPresent
)

// Attr is one attribute to attach to a node being built.
type Attr struct {
	id   dwarf.Attr
	form form
	str  string
	u    uint64
	s    int64
	ref  *Node
}

// Str builds a DW_FORM_string attribute.
func Str(id dwarf.Attr, v string) Attr { return Attr{id: id, form: formString, str: v} }

// U builds a DW_FORM_udata (unsigned LEB128) attribute.
func U(id dwarf.Attr, v uint64) Attr { return Attr{id: id, form: formUdata, u: v} }

// S builds a DW_FORM_sdata (signed LEB128) attribute, used for
// DW_AT_const_value on enumerators.
func S(id dwarf.Attr, v int64) Attr { return Attr{id: id, form: formSdata, s: v} }

// Ref builds a DW_FORM_ref_addr attribute pointing at target.
func Ref(id dwarf.Attr, target *Node) Attr { return Attr{id: id, form: formRefAddr, ref: target} }

// Flag builds a DW_FORM_flag_present attribute. Per the DWARF spec this
// form carries no bytes; the attribute's mere presence in the abbrev means
// true, so Flag should only be attached when the flag is set.
func Flag(id dwarf.Attr) Attr { return Attr{id: id, form: formFlagPresent} }

// Node is a handle to a DIE under construction. Its dwarf.Offset is only
// meaningful after Build.
type Node struct {
	tag      dwarf.Tag
	attrs    []Attr
	children []*Node
	offset   dwarf.Offset
}

// Offset returns the byte offset this node's DIE was assigned by Build.
// It must only be called after Build has run.
func (n *Node) Offset() dwarf.Offset { return n.offset }

// Builder assembles one compile unit's worth of DIEs.
type Builder struct {
	root *Node
}

// NewCompileUnit starts a builder whose root DIE is a DW_TAG_compile_unit.
func NewCompileUnit(attrs ...Attr) *Builder {
	return &Builder{root: &Node{tag: dwarf.TagCompileUnit, attrs: attrs}}
}

// Root returns the compile-unit root node.
func (b *Builder) Root() *Node { return b.root }

// AddChild appends a new DIE as a direct child of parent and returns a
// handle to it.
func (b *Builder) AddChild(parent *Node, tag dwarf.Tag, attrs ...Attr) *Node {
	n := &Node{tag: tag, attrs: attrs}
	parent.children = append(parent.children, n)
	return n
}

// Build serializes the tree into a minimal .debug_abbrev/.debug_info pair,
// parses them with debug/dwarf.New, and returns the resulting Data along
// with the root compile_unit Entry read back out of it.
func (b *Builder) Build() (*dwarf.Data, *dwarf.Entry, error) {
	cursor := dwarf.Offset(11) // 4 (unit_length) + 2 (version) + 4 (abbrev_offset) + 1 (address_size)
	assignOffsets(b.root, &cursor)

	var info bytes.Buffer
	info.Write([]byte{0, 0, 0, 0}) // unit_length placeholder
	binary.Write(&info, binary.LittleEndian, uint16(4))
	binary.Write(&info, binary.LittleEndian, uint32(0))
	info.WriteByte(8) // address_size

	var abbrev bytes.Buffer
	code := uint64(1)
	if err := encode(b.root, &info, &abbrev, &code); err != nil {
		return nil, nil, err
	}
	abbrev.WriteByte(0) // terminate the abbrev table

	infoBytes := info.Bytes()
	binary.LittleEndian.PutUint32(infoBytes, uint32(len(infoBytes)-4))

	d, err := dwarf.New(abbrev.Bytes(), nil, nil, infoBytes, nil, nil, nil, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dwtest: parsing built DWARF: %w", err)
	}
	root, err := dwarfEntryAt(d, b.root.offset)
	if err != nil {
		return nil, nil, err
	}
	return d, root, nil
}

func dwarfEntryAt(d *dwarf.Data, off dwarf.Offset) (*dwarf.Entry, error) {
	r := d.Reader()
	r.Seek(off)
	return r.Next()
}

func assignOffsets(n *Node, cursor *dwarf.Offset) {
	n.offset = *cursor
	*cursor++ // one-byte abbrev code
	for _, a := range n.attrs {
		*cursor += dwarf.Offset(attrSize(a))
	}
	for _, c := range n.children {
		assignOffsets(c, cursor)
	}
	if len(n.children) > 0 {
		*cursor++ // null terminator for the children list
	}
}

func attrSize(a Attr) int {
	switch a.form {
	case formString:
		return len(a.str) + 1
	case formUdata:
		return ulebSize(a.u)
	case formSdata:
		return slebSize(a.s)
	case formRefAddr:
		return 4
	case formFlagPresent:
		return 0
	default:
		return 0
	}
}

// encode writes n's abbrev declaration and its DIE bytes (recursively for
// its children), assigning sequential single-byte abbrev codes via code.
func encode(n *Node, info, abbrev *bytes.Buffer, code *uint64) error {
	myCode := *code
	*code++

	writeUleb(abbrev, myCode)
	writeUleb(abbrev, uint64(n.tag))
	if len(n.children) > 0 {
		abbrev.WriteByte(1)
	} else {
		abbrev.WriteByte(0)
	}
	for _, a := range n.attrs {
		writeUleb(abbrev, uint64(a.id))
		writeUleb(abbrev, uint64(dwarfForm(a.form)))
	}
	abbrev.WriteByte(0)
	abbrev.WriteByte(0)

	writeUleb(info, myCode)
	for _, a := range n.attrs {
		if err := writeAttrValue(info, a); err != nil {
			return err
		}
	}
	for _, c := range n.children {
		if err := encode(c, info, abbrev, code); err != nil {
			return err
		}
	}
	if len(n.children) > 0 {
		info.WriteByte(0) // null entry terminating the children list
	}
	return nil
}

func dwarfForm(f form) uint64 {
	switch f {
	case formString:
		return 0x08 // DW_FORM_string
	case formUdata:
		return 0x0f // DW_FORM_udata
	case formSdata:
		return 0x0d // DW_FORM_sdata
	case formRefAddr:
		return 0x10 // DW_FORM_ref_addr
	case formFlagPresent:
		return 0x19 // DW_FORM_flag_present
	default:
		return 0
	}
}

func writeAttrValue(info *bytes.Buffer, a Attr) error {
	switch a.form {
	case formString:
		info.WriteString(a.str)
		info.WriteByte(0)
	case formUdata:
		writeUleb(info, a.u)
	case formSdata:
		writeSleb(info, a.s)
	case formRefAddr:
		if a.ref == nil {
			return fmt.Errorf("dwtest: nil ref target for attribute %s", a.id)
		}
		binary.Write(info, binary.LittleEndian, uint32(a.ref.offset))
	case formFlagPresent:
		// zero bytes
	default:
		return fmt.Errorf("dwtest: unsupported form for attribute %s", a.id)
	}
	return nil
}

func writeUleb(buf *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf.WriteByte(b | 0x80)
		} else {
			buf.WriteByte(b)
			return
		}
	}
}

func ulebSize(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

func writeSleb(buf *bytes.Buffer, v int64) {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		buf.WriteByte(b)
	}
}

func slebSize(v int64) int {
	var buf bytes.Buffer
	writeSleb(&buf, v)
	return buf.Len()
}
