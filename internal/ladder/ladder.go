package ladder

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidBandwidth is wrapped by every [ConfigError].
var ErrInvalidBandwidth = errors.New("invalid bandwidth value")

// Ladder is an ordered list of bitrates in bits per second. Position is significant.
type Ladder []int64

// ConfigError reports an expected ladder entry that is not a non-negative integer.
type ConfigError struct {
	Index int    // Position of the entry in the expected ladder
	Value string // Raw entry as configured
	Err   error  // Underlying parse error, if any
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s is not an integer", ErrInvalidBandwidth, e.Value)
}

func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidBandwidth}
	}
	return []error{ErrInvalidBandwidth, e.Err}
}

// Split breaks a whitespace-separated ladder definition such as "889000 3767000 741000" into entries.
func Split(s string) []string {
	return strings.Fields(s)
}

// ParseLadder converts configured entries into a [Ladder].
//
// The first entry that fails to parse aborts with a [ConfigError].
func ParseLadder(entries []string) (Ladder, error) {
	out := make(Ladder, 0, len(entries))
	for i, raw := range entries {
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, &ConfigError{Index: i, Value: raw, Err: err}
		}
		if v < 0 {
			return nil, &ConfigError{Index: i, Value: raw}
		}
		out = append(out, v)
	}
	return out, nil
}

// Strings renders l as decimal strings, in order.
func (l Ladder) Strings() []string {
	out := make([]string, len(l))
	for i, v := range l {
		out[i] = strconv.FormatInt(v, 10)
	}
	return out
}

// index returns the position of the first occurrence of v, or -1.
func (l Ladder) index(v int64) int {
	for i, b := range l {
		if b == v {
			return i
		}
	}
	return -1
}

// Window is an inclusive bitrate interval around one expected value.
type Window struct {
	Min int64
	Max int64
}

// Contains reports whether v lies within w, bounds included.
func (w Window) Contains(v int64) bool {
	return v >= w.Min && v <= w.Max
}

// BuildWindows parses expected and returns one tolerance window per entry.
//
// Any unparsable entry fails the whole build with a [ConfigError].
func BuildWindows(expected []string, variancePercent float64) ([]Window, error) {
	parsed, err := ParseLadder(expected)
	if err != nil {
		return nil, err
	}
	return WindowsFor(parsed, variancePercent), nil
}

// WindowsFor returns the tolerance window [e - e*v/100, e + e*v/100] for each expected value e.
//
// Bounds are truncated toward zero and clamped to [0, math.MaxInt64].
func WindowsFor(expected Ladder, variancePercent float64) []Window {
	windows := make([]Window, len(expected))
	for i, e := range expected {
		delta := float64(e) * (variancePercent / 100)
		windows[i] = Window{
			Min: bound(float64(e) - delta),
			Max: bound(float64(e) + delta),
		}
	}
	return windows
}

// bound converts f to int64 without overflowing. NaN maps to zero.
func bound(f float64) int64 {
	switch {
	case math.IsNaN(f), f <= 0:
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(f)
}

// ValidVariance reports whether v is usable as a variance percent: finite and not negative.
func ValidVariance(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// lastWindow returns the index of the last window containing v, or -1.
//
// Every window is scanned; later overlapping windows win.
func lastWindow(windows []Window, v int64) int {
	found := -1
	for i, w := range windows {
		if w.Contains(v) {
			found = i
		}
	}
	return found
}
