// Package strtab implements the append-only string pool used by the BTF
// string section. It mirrors the string-table/offset-indexing pattern used
// throughout the dyninst packages this translator is built from: strings are
// only ever appended, and an offset returned by Add never becomes invalid.
package strtab

import "io"

// Table is an append-only, NUL-delimited string pool. Offset 0 holds the
// empty string, reserved for anonymous names, once the caller's first Add
// is Add(""); Table itself does not insert or enforce it (see New).
//
// Table does not deduplicate by content: adding the same string twice
// returns two distinct offsets. This matches the behavior of the BTF
// generator this package is modeled on; see Dedup for the opt-in variant.
type Table struct {
	buf  []byte
	offs []uint32
}

// New returns a completely empty Table. Per the translator's lifecycle, the
// caller is responsible for the first Add("") that reserves offset 0; see
// (*btfgen.Context).Finish.
func New() *Table {
	return &Table{}
}

// Add appends s (plus an implicit NUL) to the table and returns the byte
// offset at which s begins. Offsets are monotonically increasing and are
// stable for the lifetime of the table.
func (t *Table) Add(s string) uint32 {
	off := uint32(len(t.buf))
	t.offs = append(t.offs, off)
	t.buf = append(t.buf, s...)
	t.buf = append(t.buf, 0)
	return off
}

// Get returns the string starting at off. The behavior is undefined if off
// is not an offset previously returned by Add.
func (t *Table) Get(off uint32) string {
	end := off
	for end < uint32(len(t.buf)) && t.buf[end] != 0 {
		end++
	}
	return string(t.buf[off:end])
}

// Size returns the total number of bytes Emit will write, including NUL
// terminators.
func (t *Table) Size() uint32 {
	return uint32(len(t.buf))
}

// Emit writes every stored string followed by its NUL terminator, in
// insertion order, to w.
func (t *Table) Emit(w io.Writer) error {
	_, err := w.Write(t.buf)
	return err
}

// Dedup wraps a Table with content-based deduplication: repeated Add calls
// for the same string return the same offset. Building output with a Dedup
// is never larger than the equivalent plain Table (smaller whenever a string
// repeats) and never invalidates
// an offset a caller already holds, since offsets are only ever handed out
// by Add. It is opt-in because the translator's default behavior matches
// the non-deduplicating source it is grounded on.
type Dedup struct {
	*Table
	seen map[string]uint32
}

// NewDedup returns an empty deduplicating Table.
func NewDedup() *Dedup {
	return &Dedup{Table: New(), seen: make(map[string]uint32)}
}

// Add returns the offset of s, adding it to the underlying Table only if it
// has not been seen before.
func (d *Dedup) Add(s string) uint32 {
	if off, ok := d.seen[s]; ok {
		return off
	}
	off := d.Table.Add(s)
	d.seen[s] = off
	return off
}
