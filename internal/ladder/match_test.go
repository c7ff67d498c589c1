package ladder

import (
	"errors"
	"reflect"
	"testing"
)

func variance(p float64) Options {
	return Options{}.WithVariance(p)
}

func TestReconcile(t *testing.T) {
	tt := []struct {
		name           string
		expected       []string
		observed       Ladder
		opts           Options
		wantSeverity   Severity
		wantCategories []Category
		wantFindings   int
	}{
		{
			name:         "exact match",
			expected:     []string{"889000", "3767000"},
			observed:     Ladder{889000, 3767000},
			wantSeverity: OK,
		},
		{
			name:           "missing entry",
			expected:       []string{"889000", "3767000", "741000"},
			observed:       Ladder{889000, 3767000},
			wantSeverity:   Critical,
			wantCategories: []Category{MissingBandwidth},
			wantFindings:   1,
		},
		{
			name:           "extra entry",
			expected:       []string{"889000"},
			observed:       Ladder{889000, 3767000},
			wantSeverity:   Warning,
			wantCategories: []Category{ExtraBandwidth},
		},
		{
			name:           "reordered",
			expected:       []string{"889000", "3767000"},
			observed:       Ladder{3767000, 889000},
			wantSeverity:   Warning,
			wantCategories: []Category{OutOfOrder},
			wantFindings:   2,
		},
		{
			name:         "reordered unordered",
			expected:     []string{"889000", "3767000"},
			observed:     Ladder{3767000, 889000},
			opts:         Options{Unordered: true},
			wantSeverity: OK,
		},
		{
			name:         "variance acceptance",
			expected:     []string{"1000000"},
			observed:     Ladder{1050000},
			opts:         variance(10),
			wantSeverity: OK,
		},
		{
			name:           "variance rejection",
			expected:       []string{"1000000"},
			observed:       Ladder{1200000},
			opts:           variance(10),
			wantSeverity:   Critical,
			wantCategories: []Category{MismatchedBandwidth},
			wantFindings:   1,
		},
		{
			name:           "zero variance falls back to ordered matching",
			expected:       []string{"1000"},
			observed:       Ladder{1050},
			opts:           variance(0),
			wantSeverity:   Critical,
			wantCategories: []Category{MissingBandwidth},
			wantFindings:   1,
		},
		{
			name:           "unordered still reports missing",
			expected:       []string{"1", "2", "3"},
			observed:       Ladder{3, 1, 9},
			opts:           Options{Unordered: true},
			wantSeverity:   Critical,
			wantCategories: []Category{MissingBandwidth},
			wantFindings:   1,
		},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Reconcile(tc.expected, tc.observed, tc.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Severity != tc.wantSeverity {
				t.Errorf("expected severity %v, got %v", tc.wantSeverity, got.Severity)
			}
			if !reflect.DeepEqual(got.Categories, tc.wantCategories) {
				t.Errorf("expected categories %v, got %v", tc.wantCategories, got.Categories)
			}
			if len(got.Findings) != tc.wantFindings {
				t.Errorf("expected %d findings, got %d: %+v", tc.wantFindings, len(got.Findings), got.Findings)
			}
		})
	}

	t.Run("config failure produces no result", func(t *testing.T) {
		got, err := Reconcile([]string{"abc", "1000"}, Ladder{1000}, Options{})
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigError, got %v", err)
		}
		if !reflect.DeepEqual(got, MatchResult{}) {
			t.Errorf("expected zero result, got %+v", got)
		}
	})

	t.Run("config failure in variance mode", func(t *testing.T) {
		_, err := Reconcile([]string{"1000", "x"}, Ladder{1000}, variance(10))
		if !errors.Is(err, ErrInvalidBandwidth) {
			t.Fatalf("expected ErrInvalidBandwidth, got %v", err)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		expected := []string{"889000", "3767000", "741000"}
		observed := Ladder{3767000, 889000, 5000000, 5000000}
		for _, opts := range []Options{{}, {Unordered: true}, variance(5), variance(5).WithVariance(20)} {
			first, err := Reconcile(expected, observed, opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			second, _ := Reconcile(expected, observed, opts)
			if !reflect.DeepEqual(first, second) {
				t.Errorf("results differ between calls:\n%+v\n%+v", first, second)
			}
		}
	})
}

func TestMatchOrdered(t *testing.T) {
	t.Run("length shortfall and per-entry misses share one category", func(t *testing.T) {
		got := MatchOrdered(Ladder{1, 2, 3}, Ladder{4, 5})
		if got.Severity != Critical {
			t.Errorf("expected Critical, got %v", got.Severity)
		}
		if !reflect.DeepEqual(got.Categories, []Category{MissingBandwidth}) {
			t.Errorf("expected only MissingBandwidth, got %v", got.Categories)
		}
		if len(got.Findings) != 3 {
			t.Errorf("expected a finding per missing entry, got %d", len(got.Findings))
		}
		if got.Message() != "Missing bandwidths" {
			t.Errorf("expected single fragment, got %q", got.Message())
		}
	})

	t.Run("categories keep first trigger order", func(t *testing.T) {
		got := MatchOrdered(Ladder{1, 2, 3}, Ladder{2, 1, 9})
		want := []Category{OutOfOrder, MissingBandwidth}
		if !reflect.DeepEqual(got.Categories, want) {
			t.Errorf("expected %v, got %v", want, got.Categories)
		}
		if got.Severity != Critical {
			t.Errorf("expected Critical, got %v", got.Severity)
		}
		if got.Message() != "Incorrect bandwidth order,Missing bandwidths" {
			t.Errorf("unexpected message %q", got.Message())
		}
	})

	t.Run("findings carry positions", func(t *testing.T) {
		got := MatchOrdered(Ladder{889000, 3767000, 741000}, Ladder{3767000, 889000})
		want := []Finding{
			{Category: OutOfOrder, ExpectedIndex: 0, ObservedIndex: 1, Value: 889000, Reference: 889000},
			{Category: OutOfOrder, ExpectedIndex: 1, ObservedIndex: 0, Value: 3767000, Reference: 3767000},
			{Category: MissingBandwidth, ExpectedIndex: 2, ObservedIndex: -1, Value: 741000, Reference: 741000},
		}
		if !reflect.DeepEqual(got.Findings, want) {
			t.Errorf("expected %+v, got %+v", want, got.Findings)
		}
		if !reflect.DeepEqual(got.Categories, []Category{MissingBandwidth, OutOfOrder}) {
			t.Errorf("length check should trigger first, got %v", got.Categories)
		}
	})

	t.Run("duplicate observed values resolve to first occurrence", func(t *testing.T) {
		got := MatchOrdered(Ladder{500, 500}, Ladder{500, 500})
		if got.Severity != Warning || !got.Has(OutOfOrder) {
			t.Errorf("expected duplicate to report out of order, got %+v", got)
		}
		if len(got.Findings) != 1 || got.Findings[0].ExpectedIndex != 1 || got.Findings[0].ObservedIndex != 0 {
			t.Errorf("unexpected findings %+v", got.Findings)
		}
	})

	t.Run("extra and missing together", func(t *testing.T) {
		got := MatchOrdered(Ladder{1, 2}, Ladder{1, 3, 4})
		if got.Severity != Critical {
			t.Errorf("expected Critical, got %v", got.Severity)
		}
		if got.Message() != "Additional bandwidths,Missing bandwidths" {
			t.Errorf("unexpected message %q", got.Message())
		}
	})

	t.Run("empty ladders match", func(t *testing.T) {
		got := MatchOrdered(nil, nil)
		if got.Severity != OK || len(got.Categories) != 0 {
			t.Errorf("expected OK, got %+v", got)
		}
	})
}

func TestMatchUnordered(t *testing.T) {
	t.Run("never reports order", func(t *testing.T) {
		got := MatchUnordered(Ladder{1, 2, 3}, Ladder{3, 2, 1})
		if got.Severity != OK || got.Has(OutOfOrder) {
			t.Errorf("expected OK, got %+v", got)
		}
	})

	t.Run("extra entries warn", func(t *testing.T) {
		got := MatchUnordered(Ladder{1, 2}, Ladder{2, 1, 3})
		if got.Severity != Warning || !got.Has(ExtraBandwidth) {
			t.Errorf("expected Warning with ExtraBandwidth, got %+v", got)
		}
	})

	t.Run("every missing entry is recorded once", func(t *testing.T) {
		got := MatchUnordered(Ladder{1, 2, 3}, Ladder{1})
		if len(got.Findings) != 2 {
			t.Errorf("expected 2 findings, got %d", len(got.Findings))
		}
		if len(got.Categories) != 1 {
			t.Errorf("expected a single category, got %v", got.Categories)
		}
	})
}

func TestMatchVariance(t *testing.T) {
	t.Run("overlapping windows resolve to the last match", func(t *testing.T) {
		// windows [500,1500] and [700,2100] both contain 1000
		got := MatchVariance(Ladder{1000, 1400}, Ladder{1000, 1400}, 50, false)
		if got.Severity != Warning || !got.Has(OutOfOrder) {
			t.Fatalf("expected out of order warning, got %+v", got)
		}
		want := []Finding{{Category: OutOfOrder, ExpectedIndex: 1, ObservedIndex: 0, Value: 1000, Reference: 1400}}
		if !reflect.DeepEqual(got.Findings, want) {
			t.Errorf("expected %+v, got %+v", want, got.Findings)
		}
	})

	t.Run("overlap is accepted when unordered", func(t *testing.T) {
		got := MatchVariance(Ladder{1000, 1400}, Ladder{1000, 1400}, 50, true)
		if got.Severity != OK {
			t.Errorf("expected OK, got %+v", got)
		}
	})

	t.Run("swapped values are out of order", func(t *testing.T) {
		got := MatchVariance(Ladder{1000, 2000}, Ladder{2050, 990}, 10, false)
		if got.Severity != Warning {
			t.Errorf("expected Warning, got %v", got.Severity)
		}
		if len(got.Findings) != 2 {
			t.Errorf("expected 2 findings, got %d", len(got.Findings))
		}
	})

	t.Run("unmatched value with more observed entries is extra", func(t *testing.T) {
		got := MatchVariance(Ladder{1000}, Ladder{1000, 5000}, 10, false)
		if got.Severity != Warning {
			t.Errorf("expected Warning, got %v", got.Severity)
		}
		if !reflect.DeepEqual(got.Categories, []Category{ExtraBandwidth}) {
			t.Errorf("expected only ExtraBandwidth, got %v", got.Categories)
		}
		want := []Finding{{Category: ExtraBandwidth, ExpectedIndex: -1, ObservedIndex: 1, Value: 5000}}
		if !reflect.DeepEqual(got.Findings, want) {
			t.Errorf("expected %+v, got %+v", want, got.Findings)
		}
	})

	t.Run("unmatched value with fewer observed entries is extra and missing", func(t *testing.T) {
		got := MatchVariance(Ladder{1000, 2000}, Ladder{5000}, 10, false)
		if got.Severity != Critical {
			t.Errorf("expected Critical, got %v", got.Severity)
		}
		want := []Category{MissingBandwidth, ExtraBandwidth}
		if !reflect.DeepEqual(got.Categories, want) {
			t.Errorf("expected %v, got %v", want, got.Categories)
		}
	})

	t.Run("mismatches escalate once", func(t *testing.T) {
		got := MatchVariance(Ladder{1000, 2000}, Ladder{5000, 6000}, 10, false)
		if len(got.Categories) != 1 || len(got.Findings) != 2 {
			t.Errorf("expected one category and two findings, got %+v", got)
		}
		if got.Message() != "Mismatched bandwidths" {
			t.Errorf("unexpected message %q", got.Message())
		}
	})
}

func TestCategory(t *testing.T) {
	tt := []struct {
		c       Category
		message string
		sev     Severity
	}{
		{MissingBandwidth, "Missing bandwidths", Critical},
		{ExtraBandwidth, "Additional bandwidths", Warning},
		{OutOfOrder, "Incorrect bandwidth order", Warning},
		{MismatchedBandwidth, "Mismatched bandwidths", Critical},
	}
	for _, tc := range tt {
		t.Run(tc.c.String(), func(t *testing.T) {
			if tc.c.Message() != tc.message {
				t.Errorf("expected %q, got %q", tc.message, tc.c.Message())
			}
			if tc.c.Severity() != tc.sev {
				t.Errorf("expected %v, got %v", tc.sev, tc.c.Severity())
			}
		})
	}
}
