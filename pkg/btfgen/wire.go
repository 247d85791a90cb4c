package btfgen

import (
	"encoding/binary"
	"fmt"
)

// Header magic/version/flags are fixed by the BTF wire format (§6); they
// never vary across emissions (§8 property 6).
const (
	btfMagic   = 0xEB9F
	btfVersion = 1
	btfHdrLen  = 24
)

// Header is the 24-byte BTF header (§6).
type Header struct {
	Magic   uint16
	Version uint8
	Flags   uint8
	HdrLen  uint32
	TypeOff uint32
	TypeLen uint32
	StrOff  uint32
	StrLen  uint32
}

func computeHeader(typeLen, strLen uint32) Header {
	return Header{
		Magic:   btfMagic,
		Version: btfVersion,
		Flags:   0,
		HdrLen:  btfHdrLen,
		TypeOff: 0,
		TypeLen: typeLen,
		StrOff:  typeLen,
		StrLen:  strLen,
	}
}

func (h Header) emit(w Sink) error {
	if err := w.WriteU16(h.Magic); err != nil {
		return fmt.Errorf("btfgen: writing magic: %w", err)
	}
	if err := w.WriteU8(h.Version); err != nil {
		return fmt.Errorf("btfgen: writing version: %w", err)
	}
	if err := w.WriteU8(h.Flags); err != nil {
		return fmt.Errorf("btfgen: writing flags: %w", err)
	}
	if err := w.WriteU32(h.HdrLen); err != nil {
		return fmt.Errorf("btfgen: writing hdr_len: %w", err)
	}
	if err := w.WriteU32(h.TypeOff); err != nil {
		return fmt.Errorf("btfgen: writing type_off: %w", err)
	}
	if err := w.WriteU32(h.TypeLen); err != nil {
		return fmt.Errorf("btfgen: writing type_len: %w", err)
	}
	if err := w.WriteU32(h.StrOff); err != nil {
		return fmt.Errorf("btfgen: writing str_off: %w", err)
	}
	if err := w.WriteU32(h.StrLen); err != nil {
		return fmt.Errorf("btfgen: writing str_len: %w", err)
	}
	return nil
}

// SectionSink is the host's byte-sink contract in full (§6): Sink's
// little-endian integer emission plus the ability to switch to a named
// output section. It is the concrete counterpart of the host collaborator
// the distilled spec leaves abstract.
type SectionSink interface {
	Sink
	SwitchSection(name string) error
}

// BufferSectionWriter is a SectionSink backed by an in-memory map of named
// byte buffers, modeled on the assembly printer's section-switching
// primitive: a real printer would stream straight to an object-file
// writer's current section, but the translator core only needs "emit
// bytes into whichever section is selected," which this captures without
// pulling in a full object-file writer as a core dependency.
type BufferSectionWriter struct {
	sections map[string][]byte
	current  string
}

// NewBufferSectionWriter returns a writer with no sections yet selected.
// WriteU8/U16/U32 before the first SwitchSection is a programmer error.
func NewBufferSectionWriter() *BufferSectionWriter {
	return &BufferSectionWriter{sections: make(map[string][]byte)}
}

func (w *BufferSectionWriter) SwitchSection(name string) error {
	w.current = name
	if _, ok := w.sections[name]; !ok {
		w.sections[name] = nil
	}
	return nil
}

func (w *BufferSectionWriter) WriteU8(v uint8) error {
	if err := w.requireSection(); err != nil {
		return err
	}
	w.sections[w.current] = append(w.sections[w.current], v)
	return nil
}

func (w *BufferSectionWriter) WriteU16(v uint16) error {
	if err := w.requireSection(); err != nil {
		return err
	}
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	w.sections[w.current] = append(w.sections[w.current], buf[:]...)
	return nil
}

func (w *BufferSectionWriter) WriteU32(v uint32) error {
	if err := w.requireSection(); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.sections[w.current] = append(w.sections[w.current], buf[:]...)
	return nil
}

func (w *BufferSectionWriter) WriteBytes(p []byte) error {
	if err := w.requireSection(); err != nil {
		return err
	}
	w.sections[w.current] = append(w.sections[w.current], p...)
	return nil
}

func (w *BufferSectionWriter) requireSection() error {
	if w.current == "" {
		return fmt.Errorf("btfgen: write before any SwitchSection call")
	}
	return nil
}

// Section returns the accumulated bytes of the named section, or nil if
// it was never written to.
func (w *BufferSectionWriter) Section(name string) []byte {
	return w.sections[name]
}
