// package formatter renders check results as monitoring output, CSV profile rows and JSON reports
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/hlsx/internal/ladder"
	"github.com/desertthunder/hlsx/internal/models"
	"github.com/desertthunder/hlsx/internal/tasks"
)

// TimestampLayout is ISO 8601 with a numeric zone offset, e.g. 2024-03-01T14:05:09+0100.
const TimestampLayout = "2006-01-02T15:04:05-0700"

// Timestamp renders t in [TimestampLayout].
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Brief renders the one line summary of a URL result.
//
//	OK: URL= <url>
//	<SEVERITY>: URL= <url> >> <message>
//
// Availability results that reached probing print their message directly, as it already names the base URI.
func Brief(res tasks.URLResult, withTimestamp bool, now time.Time) string {
	var line string
	switch {
	case res.Kind == models.KindAvailability && len(res.Variants) > 0:
		line = fmt.Sprintf("%s: %s", res.Severity, res.Message)
	case res.Severity == ladder.OK && res.Message == "":
		line = fmt.Sprintf("%s: URL= %s", res.Severity, res.URL)
	default:
		line = fmt.Sprintf("%s: URL= %s >> %s", res.Severity, res.URL, res.Message)
	}

	if withTimestamp {
		return Timestamp(now) + " " + line
	}
	return line
}

// Findings renders one tab indented line per finding for verbose output.
func Findings(res tasks.URLResult) []string {
	var lines []string
	if res.Match != nil {
		for _, f := range res.Match.Findings {
			lines = append(lines, "\t"+FindingLine(f))
		}
	}
	for _, v := range res.Variants {
		status := "OK"
		if v.Err != nil {
			status = v.Err.Error()
		}
		lines = append(lines, fmt.Sprintf("\t%s: %s", v.URI, status))
	}
	return lines
}

// FindingLine describes a single finding.
func FindingLine(f ladder.Finding) string {
	switch f.Category {
	case ladder.MissingBandwidth:
		return fmt.Sprintf("Missing bandwidth %d", f.Value)
	case ladder.OutOfOrder:
		return fmt.Sprintf("Incorrect order for bandwidth %d expected index: %d got index: %d", f.Value, f.ExpectedIndex, f.ObservedIndex)
	case ladder.ExtraBandwidth, ladder.MismatchedBandwidth:
		return fmt.Sprintf("Bandwidth: %d is not expected", f.Value)
	default:
		return fmt.Sprintf("%s: %d", f.Category, f.Value)
	}
}

// ProfileRecord builds the CSV fields timestamp, url, each bandwidth, then each resolution.
func ProfileRecord(timestamp, url string, bandwidths ladder.Ladder, resolutions []string) []string {
	record := make([]string, 0, 2+len(bandwidths)+len(resolutions))
	record = append(record, timestamp, url)
	record = append(record, bandwidths.Strings()...)
	record = append(record, resolutions...)
	return record
}

// ProfileCSV renders a single profile row without the trailing newline.
func ProfileCSV(timestamp, url string, bandwidths ladder.Ladder, resolutions []string) (string, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(ProfileRecord(timestamp, url, bandwidths, resolutions)); err != nil {
		return "", fmt.Errorf("failed to write CSV record: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("CSV writer error: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// WriteProfiles writes one CSV row per OK profiles result. Failed results are skipped and returned.
func WriteProfiles(w io.Writer, report *tasks.CheckReport, now time.Time) ([]tasks.URLResult, error) {
	writer := csv.NewWriter(w)
	ts := Timestamp(now)

	var failed []tasks.URLResult
	for _, res := range report.Results {
		if res.Severity != ladder.OK {
			failed = append(failed, res)
			continue
		}
		if err := writer.Write(ProfileRecord(ts, res.URL, res.Bandwidths, res.Resolutions)); err != nil {
			return failed, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return failed, fmt.Errorf("CSV writer error: %w", err)
	}
	return failed, nil
}

// OpenProfileOutput opens path for profile rows, appending when requested and truncating otherwise.
func OpenProfileOutput(path string, appendRows bool) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendRows {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	return f, nil
}

// ResultDoc is the JSON form of a [tasks.URLResult].
type ResultDoc struct {
	URL         string       `json:"url"`
	Kind        string       `json:"kind"`
	Severity    int          `json:"severity"`
	Status      string       `json:"status"`
	Message     string       `json:"message"`
	Categories  []string     `json:"categories,omitempty"`
	Findings    []FindingDoc `json:"findings,omitempty"`
	Bandwidths  []int64      `json:"bandwidths,omitempty"`
	Resolutions []string     `json:"resolutions,omitempty"`
	Variants    []VariantDoc `json:"variants,omitempty"`
	CheckedAt   string       `json:"checked_at"`
}

// FindingDoc is the JSON form of a [ladder.Finding].
type FindingDoc struct {
	Category      string `json:"category"`
	ExpectedIndex int    `json:"expected_index"`
	ObservedIndex int    `json:"observed_index"`
	Value         int64  `json:"value"`
	Reference     int64  `json:"reference,omitempty"`
	Detail        string `json:"detail"`
}

// VariantDoc is the JSON form of a [tasks.VariantStatus].
type VariantDoc struct {
	URI   string `json:"uri"`
	URL   string `json:"url,omitempty"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ReportDoc is the JSON form of a [tasks.CheckReport].
type ReportDoc struct {
	RunID      string      `json:"run_id"`
	Kind       string      `json:"kind"`
	Profile    string      `json:"profile,omitempty"`
	Severity   int         `json:"severity"`
	Status     string      `json:"status"`
	StartedAt  string      `json:"started_at"`
	FinishedAt string      `json:"finished_at"`
	Results    []ResultDoc `json:"results"`
}

// NewFindingDocs converts findings for JSON output.
func NewFindingDocs(findings []ladder.Finding) []FindingDoc {
	if len(findings) == 0 {
		return nil
	}
	docs := make([]FindingDoc, len(findings))
	for i, f := range findings {
		docs[i] = FindingDoc{
			Category:      f.Category.String(),
			ExpectedIndex: f.ExpectedIndex,
			ObservedIndex: f.ObservedIndex,
			Value:         f.Value,
			Reference:     f.Reference,
			Detail:        FindingLine(f),
		}
	}
	return docs
}

// NewResultDoc converts a URL result for JSON output.
func NewResultDoc(res tasks.URLResult) ResultDoc {
	doc := ResultDoc{
		URL:         res.URL,
		Kind:        string(res.Kind),
		Severity:    res.Severity.ExitCode(),
		Status:      res.Severity.String(),
		Message:     res.Message,
		Bandwidths:  res.Bandwidths,
		Resolutions: res.Resolutions,
	}
	if !res.CheckedAt.IsZero() {
		doc.CheckedAt = Timestamp(res.CheckedAt)
	}
	if res.Match != nil {
		for _, c := range res.Match.Categories {
			doc.Categories = append(doc.Categories, c.String())
		}
		doc.Findings = NewFindingDocs(res.Match.Findings)
	}
	for _, v := range res.Variants {
		vd := VariantDoc{URI: v.URI, URL: v.URL, OK: v.Err == nil}
		if v.Err != nil {
			vd.Error = v.Err.Error()
		}
		doc.Variants = append(doc.Variants, vd)
	}
	return doc
}

// ReportJSON encodes a report, indented when pretty is set.
func ReportJSON(report *tasks.CheckReport, pretty bool) ([]byte, error) {
	doc := ReportDoc{
		RunID:      report.RunID,
		Kind:       string(report.Kind),
		Profile:    report.Profile,
		Severity:   report.Severity.ExitCode(),
		Status:     report.Severity.String(),
		StartedAt:  Timestamp(report.StartedAt),
		FinishedAt: Timestamp(report.FinishedAt),
		Results:    make([]ResultDoc, len(report.Results)),
	}
	for i, res := range report.Results {
		doc.Results[i] = NewResultDoc(res)
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}

// Summary renders a report's severity counts, e.g. "3 URL(s): 1 OK, 1 WARNING, 1 CRITICAL".
func Summary(report *tasks.CheckReport) string {
	parts := []string{}
	for _, s := range []ladder.Severity{ladder.OK, ladder.Warning, ladder.Critical, ladder.Unknown} {
		if n := report.Count(s); n > 0 {
			parts = append(parts, strconv.Itoa(n)+" "+s.String())
		}
	}
	return fmt.Sprintf("%d URL(s): %s", len(report.Results), strings.Join(parts, ", "))
}
