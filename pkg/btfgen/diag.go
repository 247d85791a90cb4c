package btfgen

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Diagnostics is the host's error channel (§6, §7): a place to send
// best-effort warnings about constructs the translator could not
// represent, without aborting the translation. It wraps a *zap.Logger the
// way pkg/dyninst/irgen wraps its own logger, and rate-limits the
// high-frequency cases (a binary with many unsupported DIEs should not
// flood the log) exactly the way irgen's loclistErrorLogLimiter and
// invalidGoRuntimeTypeLogLimiter do.
type Diagnostics struct {
	log         *zap.Logger
	unsupported *rate.Limiter
	overflow    *rate.Limiter
}

// NewDiagnostics returns a Diagnostics backed by log. A nil log is
// replaced with zap.NewNop(), so Diagnostics is always safe to use even
// when the caller doesn't care about output.
func NewDiagnostics(log *zap.Logger) *Diagnostics {
	if log == nil {
		log = zap.NewNop()
	}
	return &Diagnostics{
		log:         log,
		unsupported: rate.NewLimiter(rate.Every(time.Second), 5),
		overflow:    rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

func (d *Diagnostics) unsupportedTag(offsetHex string, tagName string) {
	if !d.unsupported.Allow() {
		return
	}
	d.log.Warn("unsupported DWARF construct; skipping",
		zap.String("die_offset", offsetHex),
		zap.String("tag", tagName),
	)
}

func (d *Diagnostics) overflowf(msg string, fields ...zap.Field) {
	if !d.overflow.Allow() {
		return
	}
	d.log.Warn(msg, fields...)
}
