// package tasks runs HLS checks across many playlist URLs.
//
// The core abstraction is CheckEngine, which fans URLs out to a rate limited worker pool.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hlsx/internal/ladder"
	"github.com/desertthunder/hlsx/internal/models"
	"github.com/desertthunder/hlsx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers   = 4
	maxWorkers       = 10
	defaultRateLimit = 5.0
)

// PlaylistLoader retrieves playlists. Implemented by [services.PlaylistService].
type PlaylistLoader interface {
	Load(ctx context.Context, url string) (*models.MasterPlaylist, error)
	Probe(ctx context.Context, url string) error
}

// Recorder persists individual URL results as they complete.
//
// Implemented by repositories.CheckRunRepository.
type Recorder interface {
	RecordResult(ctx context.Context, runID, profile string, res URLResult) error
}

// CheckOpts contains configuration for a check run.
type CheckOpts struct {
	Kind      models.CheckKind
	Profile   models.Profile // Expected ladder and matching options, bandwidth checks only
	Workers   int            // Concurrent workers (default: 4, max: 10)
	RateLimit float64        // Playlist requests per second (default: 5)
}

// VariantStatus is the availability of one variant playlist.
type VariantStatus struct {
	URI string // As written in the master playlist
	URL string // Resolved against the master playlist URL
	Err error
}

// URLResult is the outcome of checking a single URL.
type URLResult struct {
	URL         string
	Kind        models.CheckKind
	Severity    ladder.Severity
	Message     string
	BaseURI     string
	Match       *ladder.MatchResult // Bandwidth checks that reached reconciliation
	Bandwidths  ladder.Ladder       // Observed ladder, document order
	Resolutions []string
	Variants    []VariantStatus // Availability checks
	CheckedAt   time.Time
}

// CheckReport aggregates every URL result of a run.
type CheckReport struct {
	RunID      string
	Kind       models.CheckKind
	Profile    string
	Severity   ladder.Severity // Most severe result
	Results    []URLResult     // Input order
	StartedAt  time.Time
	FinishedAt time.Time
}

// Count returns how many results have severity s.
func (r *CheckReport) Count(s ladder.Severity) int {
	n := 0
	for _, res := range r.Results {
		if res.Severity == s {
			n++
		}
	}
	return n
}

type checkJob struct {
	index int
	url   string
}

type checkDone struct {
	index  int
	result URLResult
}

// CheckEngine runs checks against playlist URLs concurrently.
type CheckEngine struct {
	loader   PlaylistLoader
	recorder Recorder
	logger   *log.Logger
	now      func() time.Time
}

// NewCheckEngine creates a CheckEngine. A nil logger discards output.
func NewCheckEngine(loader PlaylistLoader, logger *log.Logger) *CheckEngine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &CheckEngine{loader: loader, logger: logger, now: time.Now}
}

// SetRecorder enables persistence of URL results.
func (e *CheckEngine) SetRecorder(r Recorder) {
	e.recorder = r
}

// sendProgress sends a progress update through the channel without blocking.
func (e *CheckEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run checks every URL with a worker pool and returns results in input order.
//
// A malformed bandwidth profile is reported before any playlist is requested.
// Per URL failures never abort the run; they surface as CRITICAL results.
func (e *CheckEngine) Run(ctx context.Context, prog chan<- ProgressUpdate, urls []string, opts CheckOpts) (*CheckReport, error) {
	if e.loader == nil {
		return nil, fmt.Errorf("%w: playlist loader not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Kind == "" {
		opts.Kind = models.KindBandwidths
	}
	if !opts.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown check kind %q", shared.ErrInvalidInput, opts.Kind)
	}

	var expected ladder.Ladder
	if opts.Kind == models.KindBandwidths {
		parsed, err := ladder.ParseLadder(opts.Profile.Expected())
		if err != nil {
			return nil, err
		}
		if !ladder.ValidVariance(opts.Profile.VariancePercent) {
			return nil, fmt.Errorf("%w: variance percent must be a finite non-negative number, got %v", shared.ErrInvalidInput, opts.Profile.VariancePercent)
		}
		expected = parsed
	}

	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Workers > maxWorkers {
		opts.Workers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	report := &CheckReport{
		RunID:     shared.GenerateID(),
		Kind:      opts.Kind,
		Profile:   opts.Profile.Name,
		Results:   make([]URLResult, len(urls)),
		StartedAt: e.now(),
	}
	logger := shared.WithLogger(e.logger, "run", report.RunID, "kind", string(opts.Kind))
	logger.Debug("starting check run", "urls", len(urls), "workers", opts.Workers, "rate", opts.RateLimit)

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	c := &checker{loader: e.loader, limiter: limiter, now: e.now, expected: expected, options: opts.Profile.Options()}

	jobs := make(chan checkJob, len(urls))
	done := make(chan checkDone, len(urls))

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go e.checkWorker(ctx, &wg, c, opts.Kind, jobs, done)
	}

	e.sendProgress(prog, checkStartedUpdate(len(urls), opts.Kind))
	for i, u := range urls {
		jobs <- checkJob{index: i, url: u}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(done)
	}()

	seen := make([]bool, len(urls))
	completed := 0
	for d := range done {
		completed++
		seen[d.index] = true
		report.Results[d.index] = d.result
		report.Severity = ladder.Merge(report.Severity, d.result.Severity)

		logger.Debug("checked url", "url", d.result.URL, "severity", d.result.Severity, "message", d.result.Message)
		e.sendProgress(prog, checkCompletedUpdate(completed, len(urls), d.result))

		if e.recorder != nil {
			if err := e.recorder.RecordResult(ctx, report.RunID, opts.Profile.Name, d.result); err != nil {
				logger.Warn("failed to record result", "url", d.result.URL, "error", err)
			}
		}
	}

	for i, ok := range seen {
		if !ok {
			report.Results[i] = URLResult{URL: urls[i], Kind: opts.Kind, Severity: ladder.Unknown, Message: "Check cancelled", CheckedAt: e.now()}
			report.Severity = ladder.Merge(report.Severity, ladder.Unknown)
		}
	}
	report.FinishedAt = e.now()

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("check run interrupted: %w", err)
	}
	return report, nil
}

// checkWorker is a worker goroutine that checks URLs from the jobs channel.
func (e *CheckEngine) checkWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	c *checker,
	kind models.CheckKind,
	jobs <-chan checkJob,
	done chan<- checkDone,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var res URLResult
		switch kind {
		case models.KindAvailability:
			res = c.availability(ctx, job.url)
		case models.KindProfiles:
			res = c.profiles(ctx, job.url)
		default:
			res = c.bandwidths(ctx, job.url)
		}
		done <- checkDone{index: job.index, result: res}
	}
}
