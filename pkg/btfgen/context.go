// Package btfgen is the translator core: it walks DWARF compile-unit DIE
// trees (§2-§5) and produces a BTF blob (§6). The DIE tree is consumed
// through debug/dwarf directly, grounded on how pkg/dyninst/irgen and
// pkg/di/diconfig walk the same stdlib type in the teacher repository;
// the only host collaborator this package treats as abstract is the
// output byte sink (Sink in type.go, SectionSink in wire.go).
package btfgen

import (
	"debug/dwarf"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/liu-song-6/llvm/pkg/btfgen/dwarfutil"
	"github.com/liu-song-6/llvm/pkg/btfgen/strtab"
)

// stringTable is the subset of strtab.Table's API the context needs; both
// *strtab.Table and *strtab.Dedup satisfy it (§9's opt-in dedup note).
type stringTable interface {
	Add(s string) uint32
	Get(off uint32) string
	Size() uint32
	Emit(w io.Writer) error
}

// Context is the type-graph reducer (§4.D): it owns the entry vector, the
// DIE-identity-to-id map, and the string table, and drives both the
// registration walk and the two-phase shape/completion split.
type Context struct {
	diag *Diagnostics

	d       *dwarf.Data
	entries []Type
	dieToID map[dwarf.Offset]uint32
	strings stringTable

	finished bool
	header   Header
}

// ContextOption configures a Context at construction.
type ContextOption func(*Context)

// WithDiagnostics routes the context's warnings through diag instead of a
// no-op logger.
func WithDiagnostics(diag *Diagnostics) ContextOption {
	return func(ctx *Context) { ctx.diag = diag }
}

// WithDedupStrings enables content-based string deduplication (§9). The
// default matches the source's non-deduplicating behavior.
func WithDedupStrings() ContextOption {
	return func(ctx *Context) { ctx.strings = strtab.NewDedup() }
}

// NewContext returns an empty context, ready for AddCompileUnit.
func NewContext(opts ...ContextOption) *Context {
	ctx := &Context{
		dieToID: make(map[dwarf.Offset]uint32),
		strings: strtab.New(),
		diag:    NewDiagnostics(nil),
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx
}

// AddCompileUnit registers one compile unit's DIE tree (§4.D, §6).
// Precondition: root.Tag is dwarf.TagCompileUnit and the context has not
// been finished; violating either is a programmer error, reported here as
// an error rather than a panic so CLI callers can report it cleanly.
func (ctx *Context) AddCompileUnit(d *dwarf.Data, root *dwarf.Entry) error {
	if ctx.finished {
		return fmt.Errorf("btfgen: AddCompileUnit: context already finished")
	}
	if root.Tag != dwarf.TagCompileUnit {
		return fmt.Errorf("btfgen: AddCompileUnit: root tag is %s, want compile_unit", root.Tag)
	}
	ctx.d = d
	return ctx.walk(root)
}

// walk implements §4.D's recursive registration walk. compile_unit and
// subprogram DIEs are containers: their children are always visited
// (compile units so their top-level types are found at all; subprograms
// so types declared directly under them are found — children of a nested
// lexical_block are not visited), and additionally
// the subprogram itself is then classified and possibly registered as a
// FUNC, per the supplemented §9.2 decision. compile_unit itself is never
// classified — there is no BTF kind for it.
func (ctx *Context) walk(die *dwarf.Entry) error {
	switch die.Tag {
	case dwarf.TagCompileUnit:
		return ctx.walkChildren(die)
	case dwarf.TagSubprogram:
		if err := ctx.walkChildren(die); err != nil {
			return err
		}
	}

	if ShouldSkip(ctx.d, die, ctx.diag) {
		return nil
	}
	kind := KindOf(ctx.d, die, ctx.diag)
	if kind == KindUnknown {
		return nil
	}
	return ctx.register(die, kind)
}

func (ctx *Context) walkChildren(die *dwarf.Entry) error {
	children, err := dwarfutil.Children(ctx.d, die)
	if err != nil {
		return fmt.Errorf("btfgen: walking children of %#x: %w", die.Offset, err)
	}
	for _, c := range children {
		if err := ctx.walk(c); err != nil {
			return err
		}
	}
	return nil
}

// register constructs die's type entry via the per-kind factory, assigns
// it the next dense id, and records the DIE-to-id mapping.
func (ctx *Context) register(die *dwarf.Entry, kind Kind) error {
	id := uint32(len(ctx.entries) + 1)
	t, err := ctx.newType(id, kind, die)
	if err != nil {
		return fmt.Errorf("btfgen: building %s entry for %#x: %w", kind, die.Offset, err)
	}
	ctx.entries = append(ctx.entries, t)
	ctx.dieToID[die.Offset] = id
	return nil
}

func (ctx *Context) newType(id uint32, kind Kind, die *dwarf.Entry) (Type, error) {
	switch kind {
	case KindInt:
		return newIntType(id, die), nil
	case KindPtr, KindConst, KindVolatile, KindRestrict, KindTypedef:
		return newRefType(id, kind, die), nil
	case KindFwd:
		return newFwdType(id, die), nil
	case KindEnum:
		return newEnumType(id, ctx.d, die)
	case KindArray:
		return newArrayType(id, die), nil
	case KindStruct, KindUnion:
		return newStructType(id, kind, ctx.d, die)
	case KindFunc, KindFuncProto:
		return newFuncType(id, kind, ctx.d, die)
	default:
		return nil, fmt.Errorf("btfgen: no constructor for kind %s", kind)
	}
}

// idOfOffset implements §4.D's id_of: the id recorded for the DIE at off,
// or 0 (void) if it was never registered — the deliberate lossy collapse
// for skipped or absent referents.
func (ctx *Context) idOfOffset(off dwarf.Offset) uint32 {
	return ctx.dieToID[off]
}

// addName resolves name to its string-table offset, per every completion
// rule documented as "name_off from name or 0": the empty name is never
// handed to strings.Add. Finish already burns offset 0 for the empty
// string; calling Add("") again here would append a second, distinct
// empty string under the default non-deduplicating table and return its
// offset instead of 0, violating the §3 anonymous-name invariant.
func (ctx *Context) addName(name string) uint32 {
	if name == "" {
		return 0
	}
	return ctx.strings.Add(name)
}

// Finish implements §4.D's finish(): burns string offset 0, runs every
// entry's completion in registration order, then builds the header.
// Precondition: has not already been called.
func (ctx *Context) Finish() error {
	if ctx.finished {
		return fmt.Errorf("btfgen: Finish: already finished")
	}
	ctx.finished = true
	ctx.strings.Add("")

	for _, t := range ctx.entries {
		if err := t.Complete(ctx); err != nil {
			return fmt.Errorf("btfgen: completing %s at %#x: %w", t.Kind(), t.DIE().Offset, err)
		}
	}

	if err := checkOverflow("type count", uint64(len(ctx.entries)), btfMaxType); err != nil {
		ctx.diag.overflowf("type count exceeds wire format limit", zap.Int("count", len(ctx.entries)))
		return err
	}
	if err := ctx.checkOffsetLimits(); err != nil {
		ctx.diag.overflowf("string table exceeds wire format limit", zap.Uint32("size", ctx.strings.Size()))
		return err
	}

	var typeLen uint32
	for _, t := range ctx.entries {
		typeLen += t.EncodedSize()
	}
	ctx.header = computeHeader(typeLen, ctx.strings.Size())
	return nil
}

func (ctx *Context) checkOffsetLimits() error {
	if err := checkOverflow("string table size", uint64(ctx.strings.Size()), btfMaxNameOffset); err != nil {
		return err
	}
	for _, t := range ctx.entries {
		if err := checkOverflow("name_off", uint64(t.NameOff()), btfMaxNameOffset); err != nil {
			return err
		}
	}
	return nil
}

// Emit implements §4.E: switches sink to section, writes the header, then
// every type entry in registration order, then the string table.
// Precondition: Finish has been called.
func (ctx *Context) Emit(sink SectionSink, section string) error {
	if !ctx.finished {
		return fmt.Errorf("btfgen: Emit: context not finished")
	}
	if err := sink.SwitchSection(section); err != nil {
		return fmt.Errorf("btfgen: switching to section %q: %w", section, err)
	}
	if err := ctx.header.emit(sink); err != nil {
		return err
	}
	for _, t := range ctx.entries {
		if err := t.Emit(sink); err != nil {
			return fmt.Errorf("btfgen: emitting %s id=%d: %w", t.Kind(), t.ID(), err)
		}
	}
	if err := ctx.strings.Emit(sinkWriter{sink}); err != nil {
		return fmt.Errorf("btfgen: emitting string table: %w", err)
	}
	return nil
}

// sinkWriter adapts a Sink's raw-byte write to io.Writer, so the
// string table's Emit(io.Writer) can target a Sink directly.
type sinkWriter struct{ s Sink }

func (sw sinkWriter) Write(p []byte) (int, error) {
	if err := sw.s.WriteBytes(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteDebugDump implements ctx.show_all (§6): a human-readable dump of
// every registered entry and the string table, in the style of the
// teacher's diagnostic dump helpers. The format is explicitly not stable.
func (ctx *Context) WriteDebugDump(w io.Writer) error {
	fmt.Fprintf(w, "btfgen context: %d entries, finished=%v\n", len(ctx.entries), ctx.finished)
	for _, t := range ctx.entries {
		fmt.Fprintln(w, t.debugLine(ctx.strings))
	}
	fmt.Fprintf(w, "string table: %d bytes\n", ctx.strings.Size())
	return nil
}

// Header returns the header Finish computed. It panics if called before
// Finish rather than threading an error through a pure accessor; unlike
// AddCompileUnit, Finish and Emit, which report their precondition
// violations as returned errors.
func (ctx *Context) Header() Header {
	if !ctx.finished {
		panic("btfgen: Header called before Finish")
	}
	return ctx.header
}

// NumTypes returns the number of registered entries (N in §3's
// invariants).
func (ctx *Context) NumTypes() int { return len(ctx.entries) }
