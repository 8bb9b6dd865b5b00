// Package vtime provides the engine's virtual-time source: a
// monotonic nanosecond clock relative to the moment a catalogue was
// last (re)loaded, and the NS/US/MS duration-suffix parser the XML
// loader uses for timer/duration/interval fields.
//
// Grounded on fault-injection-controller.c's FIESER_timer_get /
// FIESER_timer_init / FIESER_normalize_time_to_int64.
package vtime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Origin is the virtual-time zero point captured at catalogue load.
type Origin struct {
	loadedAt time.Time // carries Go's monotonic clock reading
}

// NewOrigin captures the current instant as the new origin.
func NewOrigin() Origin {
	return Origin{loadedAt: time.Now()}
}

// Elapsed returns nanoseconds since this origin was captured,
// measured on the monotonic clock.
func (o Origin) Elapsed() int64 {
	return int64(time.Since(o.loadedAt))
}

// LoadedAtNano returns the origin as a unix-nano wall-clock
// timestamp, for logging.
func (o Origin) LoadedAtNano() int64 {
	return o.loadedAt.UnixNano()
}

// ParseDuration parses a decimal integer immediately followed by NS,
// US or MS and normalizes it to int64 nanoseconds. It mirrors
// FIESER_normalize_time_to_int64's suffix handling exactly:
// multiplying by 1, 1e3 or 1e6 respectively.
func ParseDuration(s string) (int64, error) {
	s = strings.TrimSpace(s)
	var mul int64
	var numeric string
	switch {
	case strings.HasSuffix(s, "NS"):
		mul = 1
		numeric = strings.TrimSuffix(s, "NS")
	case strings.HasSuffix(s, "US"):
		mul = 1_000
		numeric = strings.TrimSuffix(s, "US")
	case strings.HasSuffix(s, "MS"):
		mul = 1_000_000
		numeric = strings.TrimSuffix(s, "MS")
	default:
		return 0, fmt.Errorf("vtime: %q missing NS/US/MS suffix", s)
	}

	n, err := strconv.ParseInt(numeric, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("vtime: %q is not a positive integer: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("vtime: %q must be >= 0", s)
	}
	return n * mul, nil
}
