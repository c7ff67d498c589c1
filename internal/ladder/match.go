package ladder

// Options selects the matching strategy used by [Reconcile].
type Options struct {
	VariancePercent *float64 // Tolerance band in percent; nil or zero disables variance matching
	Unordered       bool     // Ignore positions
}

// WithVariance returns a copy of o using a tolerance band of p percent.
func (o Options) WithVariance(p float64) Options {
	o.VariancePercent = &p
	return o
}

func (o Options) variance() (float64, bool) {
	if o.VariancePercent == nil || *o.VariancePercent == 0 {
		return 0, false
	}
	return *o.VariancePercent, true
}

// Reconcile parses expected and compares it with observed using the strategy selected by opts.
//
// A malformed expected entry returns a [ConfigError] before any comparison is made.
func Reconcile(expected []string, observed Ladder, opts Options) (MatchResult, error) {
	parsed, err := ParseLadder(expected)
	if err != nil {
		return MatchResult{}, err
	}
	return Match(parsed, observed, opts), nil
}

// Match compares two already parsed ladders using the strategy selected by opts.
func Match(expected, observed Ladder, opts Options) MatchResult {
	if v, ok := opts.variance(); ok {
		return MatchVariance(expected, observed, v, opts.Unordered)
	}
	if opts.Unordered {
		return MatchUnordered(expected, observed)
	}
	return MatchOrdered(expected, observed)
}

// MatchOrdered requires every expected bitrate at its expected position.
//
// Lookups use the first occurrence of a value in observed.
func MatchOrdered(expected, observed Ladder) MatchResult {
	t := newTally()
	t.lengths(len(expected), len(observed))

	for idx, b := range expected {
		found := observed.index(b)
		switch {
		case found == -1:
			t.record(Finding{Category: MissingBandwidth, ExpectedIndex: idx, ObservedIndex: -1, Value: b, Reference: b})
		case found != idx:
			t.record(Finding{Category: OutOfOrder, ExpectedIndex: idx, ObservedIndex: found, Value: b, Reference: b})
		}
	}

	return t.result()
}

// MatchUnordered requires every expected bitrate somewhere in observed.
func MatchUnordered(expected, observed Ladder) MatchResult {
	t := newTally()
	t.lengths(len(expected), len(observed))

	for idx, b := range expected {
		if observed.index(b) == -1 {
			t.record(Finding{Category: MissingBandwidth, ExpectedIndex: idx, ObservedIndex: -1, Value: b, Reference: b})
		}
	}

	return t.result()
}

// MatchVariance accepts each observed bitrate that falls inside the tolerance window of an expected one.
//
// When windows overlap the last containing window is used. Unless unordered is set, that window must
// sit at the observed value's own position.
func MatchVariance(expected, observed Ladder, variancePercent float64, unordered bool) MatchResult {
	windows := WindowsFor(expected, variancePercent)

	t := newTally()
	t.lengths(len(expected), len(observed))

	for idx, v := range observed {
		w := lastWindow(windows, v)
		switch {
		case w == -1 && len(expected) == len(observed):
			t.record(Finding{Category: MismatchedBandwidth, ExpectedIndex: -1, ObservedIndex: idx, Value: v})
		case w == -1:
			t.record(Finding{Category: ExtraBandwidth, ExpectedIndex: -1, ObservedIndex: idx, Value: v})
		case w == idx || unordered:
			// accepted
		default:
			t.record(Finding{Category: OutOfOrder, ExpectedIndex: w, ObservedIndex: idx, Value: v, Reference: expected[w]})
		}
	}

	return t.result()
}
