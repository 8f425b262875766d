package syslog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// diagnostics reports problems with the sink itself. It never writes to the
// kernel log device, and it is throttled so a wedged device cannot flood
// stderr.
type diagnostics struct {
	limiter *rate.Limiter
	zlog    zerolog.Logger
}

func newDiagnostics(out io.Writer) *diagnostics {
	if out == nil {
		out = os.Stderr
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Str("component", "kmsglog").Logger()

	return &diagnostics{
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		zlog:    logger,
	}
}

func (d *diagnostics) dropped(err error, total uint64) {
	if !d.limiter.Allow() {
		return
	}
	d.zlog.Warn().Err(err).Uint64("dropped", total).Msg("kernel log record dropped")
}
