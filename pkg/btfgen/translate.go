package btfgen

import (
	"debug/dwarf"

	pkgerrors "github.com/pkg/errors"
)

// Translate drives a Context through its full lifecycle (§5: construct,
// N× AddCompileUnit, finish) for the given compile units, all read off d.
// It is the single entry point cmd/btfgen's generate subcommand calls,
// analogous to irgen.GenerateIR: like that function, it recovers from any
// panic debug/dwarf raises on malformed input and converts it to an error
// rather than letting it escape, since debug/dwarf makes no guarantees
// about tolerating untrusted or corrupt input.
func Translate(d *dwarf.Data, units []*dwarf.Entry, opts ...ContextOption) (ctx *Context, retErr error) {
	defer func() {
		r := recover()
		switch r := r.(type) {
		case nil:
		case error:
			retErr = pkgerrors.Wrap(r, "btfgen.Translate: panic")
		default:
			retErr = pkgerrors.Errorf("btfgen.Translate: panic: %v", r)
		}
	}()

	ctx = NewContext(opts...)
	for _, unit := range units {
		if err := ctx.AddCompileUnit(d, unit); err != nil {
			return nil, err
		}
	}
	if err := ctx.Finish(); err != nil {
		return nil, err
	}
	return ctx, nil
}
