// Package tasks runs HLS monitoring checks over lists of playlist URLs with real-time progress reporting.
//
// # Check Kinds
//
// [CheckEngine.Run] supports three kinds, selected with [CheckOpts.Kind]:
//
//  1. bandwidths : Reconcile the observed bandwidth ladder with a profile
//     - Validates the URL, loads the master playlist, requires variants
//     - Compares with [ladder.Match] using the profile's variance and ordering options
//     - Severity and message come from the [ladder.MatchResult]
//
//  2. availability : Probe every variant playlist
//     - Variant URIs are resolved against the master playlist URL
//     - Any failed probe makes the URL CRITICAL
//     - Message lists each URI as uri:OK or uri:<error>
//
//  3. profiles : Capture bandwidths and resolutions for reporting
//
// Invalid URLs, load failures and playlists without variants are CRITICAL for every kind.
//
// # Concurrency
//
// URLs are distributed to a worker pool (default 4, max 10). Every playlist request waits on a
// shared [rate.Limiter] (default 5 per second). Results are collected by a single goroutine and
// stored at their input index, so [CheckReport.Results] keeps input order.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and the [URLResult] for completed URLs.
// Updates use select with default to prevent blocking.
//
// # Recording
//
// The optional [Recorder] interface persists every URL result as it completes.
// Recording failures are logged and never fail the run.
package tasks
