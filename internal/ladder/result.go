package ladder

import "strings"

// Category classifies a discrepancy between the expected and observed ladders.
type Category int

const (
	MissingBandwidth Category = iota
	ExtraBandwidth
	OutOfOrder
	MismatchedBandwidth
)

func (c Category) String() string {
	switch c {
	case MissingBandwidth:
		return "missing_bandwidth"
	case ExtraBandwidth:
		return "extra_bandwidth"
	case OutOfOrder:
		return "out_of_order"
	case MismatchedBandwidth:
		return "mismatched_bandwidth"
	default:
		return ""
	}
}

// Message is the fragment contributed to a check's brief output.
func (c Category) Message() string {
	switch c {
	case MissingBandwidth:
		return "Missing bandwidths"
	case ExtraBandwidth:
		return "Additional bandwidths"
	case OutOfOrder:
		return "Incorrect bandwidth order"
	case MismatchedBandwidth:
		return "Mismatched bandwidths"
	default:
		return ""
	}
}

// Severity is the level a category escalates to on its first trigger.
func (c Category) Severity() Severity {
	switch c {
	case MissingBandwidth, MismatchedBandwidth:
		return Critical
	case ExtraBandwidth, OutOfOrder:
		return Warning
	default:
		return Unknown
	}
}

// Finding is a single per-entry discrepancy.
//
// Indexes that do not apply are -1.
type Finding struct {
	Category      Category
	ExpectedIndex int   // Position in the expected ladder
	ObservedIndex int   // Position in the observed ladder
	Value         int64 // The bitrate the finding is about
	Reference     int64 // Expected bitrate a value was matched against, 0 if none
}

// MatchResult is the outcome of one reconciliation.
type MatchResult struct {
	Severity   Severity
	Categories []Category // Triggered categories in first-trigger order, no duplicates
	Findings   []Finding  // Per-entry detail for verbose output
}

// Has reports whether c was triggered.
func (r MatchResult) Has(c Category) bool {
	for _, got := range r.Categories {
		if got == c {
			return true
		}
	}
	return false
}

// Message joins the triggered category fragments with commas, e.g. "Missing bandwidths,Incorrect bandwidth order".
func (r MatchResult) Message() string {
	parts := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		parts[i] = c.Message()
	}
	return strings.Join(parts, ",")
}

// tally accumulates a [MatchResult].
//
// A category escalates severity the first time it is raised; later raises only add findings.
type tally struct {
	severity   Severity
	categories []Category
	raised     map[Category]bool
	findings   []Finding
}

func newTally() *tally {
	return &tally{raised: make(map[Category]bool)}
}

func (t *tally) raise(c Category) {
	if t.raised[c] {
		return
	}
	t.raised[c] = true
	t.categories = append(t.categories, c)
	t.severity = Merge(t.severity, c.Severity())
}

func (t *tally) record(f Finding) {
	t.raise(f.Category)
	t.findings = append(t.findings, f)
}

// lengths applies the ladder length checks shared by every matcher.
func (t *tally) lengths(expected, observed int) {
	if observed < expected {
		t.raise(MissingBandwidth)
	}
	if observed > expected {
		t.raise(ExtraBandwidth)
	}
}

func (t *tally) result() MatchResult {
	return MatchResult{
		Severity:   t.severity,
		Categories: t.categories,
		Findings:   t.findings,
	}
}
