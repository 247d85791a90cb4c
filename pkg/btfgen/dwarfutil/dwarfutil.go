// Package dwarfutil collects small helpers for reading attributes and
// children off debug/dwarf entries. It is the "DIE tree" half of the host
// contract the translator core depends on (see the EXTERNAL INTERFACES
// section of the spec this package implements): attribute lookup by id
// returning a typed value, and ordered iteration over a DIE's children.
//
// The generic attribute accessor below is grounded directly on the
// maybeGetAttr/getAttr helpers used throughout pkg/dyninst/irgen.
package dwarfutil

import (
	"debug/dwarf"
	"fmt"
)

// MaybeAttr returns the value of attr on entry if present, and whether it
// was present. If the attribute is present but does not have type T, an
// error is returned; debug/dwarf guarantees the Go type of Val's result is
// determined by the attribute's DWARF class, so a mismatch here means the
// caller asked for the wrong class of attribute.
func MaybeAttr[T any](entry *dwarf.Entry, attr dwarf.Attr) (T, bool, error) {
	val := entry.Val(attr)
	if val == nil {
		return *new(T), false, nil
	}
	v, ok := val.(T)
	if !ok {
		return v, false, fmt.Errorf(
			"dwarfutil: expected %T for attribute %s, got %v (%T)",
			v, attr, val, val,
		)
	}
	return v, true, nil
}

// Attr is like MaybeAttr, but returns the zero value and ok=false (with no
// error) when the attribute is absent, collapsing "absent" and "wrong type"
// into a single negative result. Most classification and shape-phase code
// only cares whether a usable value was found.
func Attr[T any](entry *dwarf.Entry, attr dwarf.Attr) (v T, ok bool) {
	v, ok, err := MaybeAttr[T](entry, attr)
	if err != nil {
		return *new(T), false
	}
	return v, ok
}

// Int64Attr reads an integer-classed attribute. debug/dwarf decodes every
// constant form, DW_FORM_udata included, as int64; a uint64 value is also
// accepted and converted.
func Int64Attr(entry *dwarf.Entry, attr dwarf.Attr) (int64, bool) {
	if v, ok := Attr[int64](entry, attr); ok {
		return v, true
	}
	if v, ok := Attr[uint64](entry, attr); ok {
		return int64(v), true
	}
	return 0, false
}

// RefAttr reads a reference-classed attribute (DW_FORM_ref*), which
// debug/dwarf surfaces as a dwarf.Offset identifying another DIE in the
// same dwarf.Data.
func RefAttr(entry *dwarf.Entry, attr dwarf.Attr) (dwarf.Offset, bool) {
	return Attr[dwarf.Offset](entry, attr)
}

// StringAttr reads a string-classed attribute.
func StringAttr(entry *dwarf.Entry, attr dwarf.Attr) (string, bool) {
	return Attr[string](entry, attr)
}

// HasAttr reports whether entry carries attr at all, regardless of class.
// It is used for flag attributes such as DW_AT_declaration whose mere
// presence is the signal, not their value.
func HasAttr(entry *dwarf.Entry, attr dwarf.Attr) bool {
	return entry.Val(attr) != nil
}

// EntryAt seeks r to off and reads the entry there. It is how the
// translator follows a DW_FORM_ref* attribute to the DIE it names.
func EntryAt(d *dwarf.Data, off dwarf.Offset) (*dwarf.Entry, error) {
	r := d.Reader()
	r.Seek(off)
	entry, err := r.Next()
	if err != nil {
		return nil, fmt.Errorf("dwarfutil: reading entry at %#x: %w", off, err)
	}
	if isNullEntry(entry) {
		return nil, fmt.Errorf("dwarfutil: no entry at %#x", off)
	}
	return entry, nil
}

// Children returns the direct children of parent, in DIE order. It does
// not recurse: grandchildren are not included, and any children with their
// own children are skipped over without being descended into.
//
// This is the same "seek, consume the parent, then Next() until the
// terminating null entry" idiom used by pkg/di/diconfig's getStructFields
// to walk a struct's member DIEs.
func Children(d *dwarf.Data, parent *dwarf.Entry) ([]*dwarf.Entry, error) {
	if !parent.Children {
		return nil, nil
	}
	r := d.Reader()
	r.Seek(parent.Offset)
	if _, err := r.Next(); err != nil {
		return nil, fmt.Errorf("dwarfutil: re-reading %#x: %w", parent.Offset, err)
	}
	var children []*dwarf.Entry
	for {
		child, err := r.Next()
		if err != nil {
			return nil, fmt.Errorf("dwarfutil: reading children of %#x: %w", parent.Offset, err)
		}
		if isNullEntry(child) {
			return children, nil
		}
		children = append(children, child)
		if child.Children {
			r.SkipChildren()
		}
	}
}

// ChildrenByTag returns parent's direct children whose tag is tag.
func ChildrenByTag(d *dwarf.Data, parent *dwarf.Entry, tag dwarf.Tag) ([]*dwarf.Entry, error) {
	children, err := Children(d, parent)
	if err != nil {
		return nil, err
	}
	var out []*dwarf.Entry
	for _, c := range children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out, nil
}

// isNullEntry reports whether e is the synthetic terminator debug/dwarf
// returns at the end of a sibling list. It can be used but there's also
// always a NULL/empty entry at the end of entry trees, mirroring
// pkg/di/diconfig.entryIsEmpty.
func isNullEntry(e *dwarf.Entry) bool {
	return e == nil || (!e.Children && len(e.Field) == 0 && e.Offset == 0 && e.Tag == dwarf.Tag(0))
}
