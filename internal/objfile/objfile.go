// Package objfile opens an ELF binary and exposes the narrow surface the
// translator's CLI driver needs from it: the binary's DWARF data and an
// ordered walk over its compile units. It mirrors the cut-down surface
// pkg/dyninst/object.FileWithDwarf and pkg/util/safeelf expose to irgen,
// trimmed to what a DWARF-to-BTF pass actually touches — this package has
// no use for symbol tables, relocations, or section data the way the
// wider object package does for dynamic instrumentation.
package objfile

import (
	"debug/dwarf"
	"debug/elf"
	"encoding/binary"
	"fmt"
)

// File is an opened ELF binary with its DWARF debug info parsed.
type File struct {
	elf   *elf.File
	dwarf *dwarf.Data
}

// Open opens path as an ELF file and loads its DWARF debug info. The
// caller must Close the returned File.
//
// Open rejects a binary whose target byte order is not little-endian:
// the wire encoder (wire.go) writes every BTF field with
// encoding/binary.LittleEndian, per §6's "the core does not re-endian"
// contract, so a big-endian target (e.g. EM_S390, EM_PPC64 run big-endian)
// would silently produce a BTF blob no consumer on that machine could
// read correctly. This is the reason Machine/byte order is inspected
// here rather than left for the caller to check.
func Open(path string) (*File, error) {
	elfFile, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("objfile: opening %s: %w", path, err)
	}
	if elfFile.ByteOrder != binary.LittleEndian {
		elfFile.Close()
		return nil, fmt.Errorf("objfile: %s targets %s, which is not little-endian; the BTF wire encoder only supports little-endian targets", path, elfFile.Machine)
	}
	d, err := elfFile.DWARF()
	if err != nil {
		elfFile.Close()
		return nil, fmt.Errorf("objfile: %s has no usable DWARF data: %w", path, err)
	}
	return &File{elf: elfFile, dwarf: d}, nil
}

// Close releases the underlying file descriptor.
func (f *File) Close() error {
	return f.elf.Close()
}

// DWARF returns the binary's parsed DWARF data.
func (f *File) DWARF() *dwarf.Data {
	return f.dwarf
}

// Machine identifies the binary's target architecture, e.g. elf.EM_X86_64.
func (f *File) Machine() elf.Machine {
	return f.elf.Machine
}

// CompileUnits returns the root DW_TAG_compile_unit entry of every
// compile unit in the binary's DWARF data, in the order debug/dwarf's
// reader produces them.
func (f *File) CompileUnits() ([]*dwarf.Entry, error) {
	var units []*dwarf.Entry
	r := f.dwarf.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			return nil, fmt.Errorf("objfile: reading compile units: %w", err)
		}
		if entry == nil {
			return units, nil
		}
		if entry.Tag == dwarf.TagCompileUnit {
			units = append(units, entry)
		}
		r.SkipChildren()
	}
}
