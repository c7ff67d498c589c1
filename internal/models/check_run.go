package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/hlsx/internal/ladder"
)

// CheckKind names the kind of check that produced a result.
type CheckKind string

const (
	KindBandwidths   CheckKind = "bandwidths"   // Ladder reconciliation against a profile
	KindAvailability CheckKind = "availability" // Every variant playlist can be retrieved
	KindProfiles     CheckKind = "profiles"     // Bandwidth and resolution listing only
)

// Valid reports whether k is a known kind.
func (k CheckKind) Valid() bool {
	switch k {
	case KindBandwidths, KindAvailability, KindProfiles:
		return true
	default:
		return false
	}
}

// CheckRun is a persisted check outcome for a single URL.
//
// All checks started by one CLI invocation share a RunID.
type CheckRun struct {
	id        string
	sequence  int
	runID     string
	kind      CheckKind
	url       string
	profile   string
	severity  ladder.Severity
	message   string
	findings  string // JSON encoded []ladder.Finding
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCheckRun creates a [CheckRun] stamped with the current time.
func NewCheckRun(sequence int, runID string, kind CheckKind, url, profile string, severity ladder.Severity, message, findings string) *CheckRun {
	now := time.Now()
	return &CheckRun{
		sequence:  sequence,
		runID:     runID,
		kind:      kind,
		url:       url,
		profile:   profile,
		severity:  severity,
		message:   message,
		findings:  findings,
		createdAt: now,
		updatedAt: now,
	}
}

func (c *CheckRun) ID() string                { return c.id }
func (c *CheckRun) Sequence() int             { return c.sequence }
func (c *CheckRun) RunID() string             { return c.runID }
func (c *CheckRun) Kind() CheckKind           { return c.kind }
func (c *CheckRun) URL() string               { return c.url }
func (c *CheckRun) Profile() string           { return c.profile }
func (c *CheckRun) Severity() ladder.Severity { return c.severity }
func (c *CheckRun) Message() string           { return c.message }
func (c *CheckRun) Findings() string          { return c.findings }
func (c *CheckRun) CreatedAt() time.Time      { return c.createdAt }
func (c *CheckRun) UpdatedAt() time.Time      { return c.updatedAt }
func (c *CheckRun) DeletedAt() *time.Time     { return c.deletedAt }

func (c *CheckRun) SetID(id string)               { c.id = id }
func (c *CheckRun) SetSequence(seq int)           { c.sequence = seq }
func (c *CheckRun) SetCreatedAt(t time.Time)      { c.createdAt = t }
func (c *CheckRun) SetUpdatedAt(t time.Time)      { c.updatedAt = t }
func (c *CheckRun) SetDeletedAt(t *time.Time)     { c.deletedAt = t }
func (c *CheckRun) SetMessage(message string)     { c.message = message }
func (c *CheckRun) SetSeverity(s ladder.Severity) { c.severity = s }

// Validate checks required fields.
func (c *CheckRun) Validate() error {
	if c.id == "" {
		return fmt.Errorf("check run id is required")
	}
	if c.url == "" {
		return fmt.Errorf("check run url is required")
	}
	if !c.kind.Valid() {
		return fmt.Errorf("unknown check kind: %q", c.kind)
	}
	if c.severity < ladder.OK {
		return fmt.Errorf("invalid severity: %d", int(c.severity))
	}
	return nil
}
