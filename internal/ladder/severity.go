package ladder

// Severity is an alerting level ordered OK < Warning < Critical < Unknown.
//
// Values map directly onto Sensu check exit codes.
type Severity int

const (
	OK Severity = iota
	Warning
	Critical
	Unknown
)

func (s Severity) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the process exit code for s. Anything outside the known range is reported as [Unknown].
func (s Severity) ExitCode() int {
	if s < OK {
		return int(Unknown)
	}
	return int(s)
}

// Merge returns the more severe of current and next. It never lowers an escalated severity.
func Merge(current, next Severity) Severity {
	if next > current {
		return next
	}
	return current
}
