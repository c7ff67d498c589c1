package tasks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/hlsx/internal/ladder"
	"github.com/desertthunder/hlsx/internal/models"
	"github.com/desertthunder/hlsx/internal/shared"
)

type mockLoader struct {
	mu        sync.Mutex
	playlists map[string]*models.MasterPlaylist
	loadErrs  map[string]error
	probeErrs map[string]error
	loads     []string
	probes    []string
}

func (m *mockLoader) Load(ctx context.Context, url string) (*models.MasterPlaylist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads = append(m.loads, url)
	if err := m.loadErrs[url]; err != nil {
		return nil, err
	}
	if p, ok := m.playlists[url]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: HTTP 404 for %s", shared.ErrAPIRequest, url)
}

func (m *mockLoader) Probe(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes = append(m.probes, url)
	return m.probeErrs[url]
}

type mockRecorder struct {
	runIDs  []string
	results []URLResult
	err     error
}

func (m *mockRecorder) RecordResult(ctx context.Context, runID, profile string, res URLResult) error {
	m.runIDs = append(m.runIDs, runID)
	m.results = append(m.results, res)
	return m.err
}

func master(url string, bandwidths ...int64) *models.MasterPlaylist {
	p := &models.MasterPlaylist{URL: url, BaseURI: url[:strings.LastIndex(url, "/")+1]}
	for i, bw := range bandwidths {
		p.Variants = append(p.Variants, models.Variant{
			URI:        fmt.Sprintf("v%d.m3u8", i),
			Bandwidth:  bw,
			Resolution: fmt.Sprintf("%dx%d", 320*(i+1), 180*(i+1)),
		})
	}
	return p
}

func fastOpts(kind models.CheckKind, profile models.Profile) CheckOpts {
	return CheckOpts{Kind: kind, Profile: profile, Workers: 3, RateLimit: 1000}
}

func TestCheckEngine(t *testing.T) {
	const (
		okURL      = "http://example.com/ok/master.m3u8"
		extraURL   = "http://example.com/extra/master.m3u8"
		missingURL = "http://example.com/missing/master.m3u8"
		mediaURL   = "http://example.com/media/index.m3u8"
		downURL    = "http://example.com/down/master.m3u8"
	)

	loader := &mockLoader{
		playlists: map[string]*models.MasterPlaylist{
			okURL:      master(okURL, 500000, 1000000),
			extraURL:   master(extraURL, 500000, 1000000, 2000000),
			missingURL: master(missingURL, 500000),
			mediaURL:   {URL: mediaURL},
		},
		loadErrs: map[string]error{downURL: fmt.Errorf("%w: connection refused", shared.ErrAPIRequest)},
	}
	profile := models.Profile{Name: "sd", Bandwidths: "500000 1000000"}

	t.Run("Run", func(t *testing.T) {
		t.Run("Bandwidths Keeps Input Order", func(t *testing.T) {
			engine := NewCheckEngine(loader, nil)
			urls := []string{okURL, extraURL, missingURL, mediaURL, downURL, "not-a-url"}

			report, err := engine.Run(context.Background(), nil, urls, fastOpts(models.KindBandwidths, profile))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(report.Results) != len(urls) {
				t.Fatalf("expected %d results, got %d", len(urls), len(report.Results))
			}
			for i, res := range report.Results {
				if res.URL != urls[i] {
					t.Errorf("result %d: expected url %s, got %s", i, urls[i], res.URL)
				}
				if res.CheckedAt.IsZero() {
					t.Errorf("result %d: expected checked_at to be set", i)
				}
			}

			tt := []struct {
				severity ladder.Severity
				message  string
			}{
				{ladder.OK, ""},
				{ladder.Warning, "Additional bandwidths"},
				{ladder.Critical, "Missing bandwidths"},
				{ladder.Critical, "Does not contain any variant playlists"},
				{ladder.Critical, "Failed to load playlist"},
				{ladder.Critical, "Not a valid URL"},
			}
			for i, tc := range tt {
				got := report.Results[i]
				if got.Severity != tc.severity {
					t.Errorf("%s: expected %s, got %s", got.URL, tc.severity, got.Severity)
				}
				if !strings.HasPrefix(got.Message, tc.message) {
					t.Errorf("%s: expected message starting %q, got %q", got.URL, tc.message, got.Message)
				}
			}

			if report.Severity != ladder.Critical {
				t.Errorf("expected aggregated CRITICAL, got %s", report.Severity)
			}
			if report.Count(ladder.Critical) != 4 || report.Count(ladder.OK) != 1 {
				t.Errorf("unexpected counts: critical=%d ok=%d", report.Count(ladder.Critical), report.Count(ladder.OK))
			}
			if report.RunID == "" || report.Profile != "sd" {
				t.Errorf("unexpected report metadata %q %q", report.RunID, report.Profile)
			}
			if report.Results[0].Match == nil || !reflect.DeepEqual(report.Results[0].Bandwidths, ladder.Ladder{500000, 1000000}) {
				t.Errorf("expected match detail and observed ladder, got %+v", report.Results[0])
			}
		})

		t.Run("Bandwidths With Variance", func(t *testing.T) {
			url := "http://example.com/drift/master.m3u8"
			l := &mockLoader{playlists: map[string]*models.MasterPlaylist{url: master(url, 1050, 1950)}}
			p := models.Profile{Bandwidths: "1000 2000", VariancePercent: 10}

			report, err := NewCheckEngine(l, nil).Run(context.Background(), nil, []string{url}, fastOpts(models.KindBandwidths, p))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.Severity != ladder.OK {
				t.Errorf("expected drift within variance to be OK, got %s: %s", report.Severity, report.Results[0].Message)
			}
		})

		t.Run("Invalid Profile Aborts Before Fetching", func(t *testing.T) {
			l := &mockLoader{}
			bad := models.Profile{Bandwidths: "500000 abc"}

			report, err := NewCheckEngine(l, nil).Run(context.Background(), nil, []string{okURL}, fastOpts(models.KindBandwidths, bad))
			var cfgErr *ladder.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Value != "abc" {
				t.Errorf("expected offending value abc, got %s", cfgErr.Value)
			}
			if report != nil {
				t.Error("expected no report")
			}
			if len(l.loads) != 0 {
				t.Errorf("expected no playlist requests, got %v", l.loads)
			}
		})

		t.Run("Unusable Variance Aborts", func(t *testing.T) {
			for _, v := range []float64{-5, math.NaN(), math.Inf(1), math.Inf(-1)} {
				l := &mockLoader{}
				bad := models.Profile{Bandwidths: "1", VariancePercent: v}
				_, err := NewCheckEngine(l, nil).Run(context.Background(), nil, []string{okURL}, fastOpts(models.KindBandwidths, bad))
				if !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("variance %v: expected ErrInvalidInput, got %v", v, err)
				}
				if len(l.loads) != 0 {
					t.Errorf("variance %v: expected no playlist requests, got %v", v, l.loads)
				}
			}
		})

		t.Run("Huge Variance Matches", func(t *testing.T) {
			p := models.Profile{Bandwidths: "500000 1000000", VariancePercent: 1e300, Unordered: true}
			report, err := NewCheckEngine(loader, nil).Run(context.Background(), nil, []string{okURL}, fastOpts(models.KindBandwidths, p))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.Severity != ladder.OK {
				t.Errorf("expected OK, got %s: %s", report.Severity, report.Results[0].Message)
			}
		})

		t.Run("Availability", func(t *testing.T) {
			l := &mockLoader{
				playlists: map[string]*models.MasterPlaylist{okURL: master(okURL, 1, 2)},
				probeErrs: map[string]error{"http://example.com/ok/v1.m3u8": errors.New("HTTP 403")},
			}

			report, err := NewCheckEngine(l, nil).Run(context.Background(), nil, []string{okURL}, fastOpts(models.KindAvailability, models.Profile{}))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			res := report.Results[0]
			if res.Severity != ladder.Critical {
				t.Errorf("expected CRITICAL, got %s", res.Severity)
			}
			want := "BaseURI=http://example.com/ok/ >> v0.m3u8:OK, v1.m3u8:HTTP 403"
			if res.Message != want {
				t.Errorf("expected %q, got %q", want, res.Message)
			}
			if len(res.Variants) != 2 || res.Variants[0].URL != "http://example.com/ok/v0.m3u8" {
				t.Errorf("unexpected variant statuses %+v", res.Variants)
			}
		})

		t.Run("Availability All OK", func(t *testing.T) {
			l := &mockLoader{playlists: map[string]*models.MasterPlaylist{okURL: master(okURL, 1, 2)}}

			report, err := NewCheckEngine(l, nil).Run(context.Background(), nil, []string{okURL}, fastOpts(models.KindAvailability, models.Profile{}))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.Severity != ladder.OK {
				t.Errorf("expected OK, got %s", report.Severity)
			}
			if len(l.probes) != 2 {
				t.Errorf("expected 2 probes, got %v", l.probes)
			}
		})

		t.Run("Availability Not A Master Playlist", func(t *testing.T) {
			report, err := NewCheckEngine(loader, nil).Run(context.Background(), nil, []string{mediaURL}, fastOpts(models.KindAvailability, models.Profile{}))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			res := report.Results[0]
			if res.Severity != ladder.Critical || res.Message != "Does not contain any streams" {
				t.Errorf("expected CRITICAL with no streams, got %s %q", res.Severity, res.Message)
			}
		})

		t.Run("Profiles", func(t *testing.T) {
			report, err := NewCheckEngine(loader, nil).Run(context.Background(), nil, []string{extraURL}, fastOpts(models.KindProfiles, models.Profile{}))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			res := report.Results[0]
			if !reflect.DeepEqual(res.Bandwidths, ladder.Ladder{500000, 1000000, 2000000}) {
				t.Errorf("unexpected bandwidths %v", res.Bandwidths)
			}
			if !reflect.DeepEqual(res.Resolutions, []string{"320x180", "640x360", "960x540"}) {
				t.Errorf("unexpected resolutions %v", res.Resolutions)
			}
			if res.Severity != ladder.OK {
				t.Errorf("expected OK, got %s", res.Severity)
			}
		})

		t.Run("Unknown Kind", func(t *testing.T) {
			_, err := NewCheckEngine(loader, nil).Run(context.Background(), nil, []string{okURL}, CheckOpts{Kind: "bogus"})
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("Nil Loader", func(t *testing.T) {
			_, err := NewCheckEngine(nil, nil).Run(context.Background(), nil, []string{okURL}, CheckOpts{})
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("Cancelled Context", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			report, err := NewCheckEngine(loader, nil).Run(ctx, nil, []string{okURL, extraURL}, fastOpts(models.KindBandwidths, profile))
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
			if report.Severity != ladder.Unknown {
				t.Errorf("expected UNKNOWN, got %s", report.Severity)
			}
		})

		t.Run("Records Every Result", func(t *testing.T) {
			rec := &mockRecorder{err: errors.New("disk full")}
			engine := NewCheckEngine(loader, nil)
			engine.SetRecorder(rec)

			report, err := engine.Run(context.Background(), nil, []string{okURL, extraURL}, fastOpts(models.KindBandwidths, profile))
			if err != nil {
				t.Fatalf("recording errors should not fail the run: %v", err)
			}
			if len(rec.results) != 2 {
				t.Fatalf("expected 2 recorded results, got %d", len(rec.results))
			}
			for _, id := range rec.runIDs {
				if id != report.RunID {
					t.Errorf("expected run id %s, got %s", report.RunID, id)
				}
			}
		})

		t.Run("Sends Progress", func(t *testing.T) {
			prog := make(chan ProgressUpdate, 10)

			_, err := NewCheckEngine(loader, nil).Run(context.Background(), prog, []string{okURL, extraURL}, fastOpts(models.KindBandwidths, profile))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			close(prog)

			var updates []ProgressUpdate
			for u := range prog {
				updates = append(updates, u)
			}
			if len(updates) != 3 {
				t.Fatalf("expected 3 updates, got %d", len(updates))
			}
			if updates[0].Phase != StartRun || updates[0].Total != 2 {
				t.Errorf("unexpected first update %+v", updates[0])
			}
			last := updates[2]
			if last.Phase != CheckURL || last.Step != 2 {
				t.Errorf("unexpected last update %+v", last)
			}
			if _, ok := last.Data.(URLResult); !ok {
				t.Errorf("expected URLResult data, got %T", last.Data)
			}
		})

		t.Run("Progress Never Blocks", func(t *testing.T) {
			prog := make(chan ProgressUpdate)
			if _, err := NewCheckEngine(loader, nil).Run(context.Background(), prog, []string{okURL}, fastOpts(models.KindBandwidths, profile)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	})
}

func TestPhase(t *testing.T) {
	if StartRun.String() != "start_run" || CheckURL.String() != "check_url" || Phase(99).String() != "" {
		t.Error("unexpected phase names")
	}
}
