// Package ladder reconciles an expected bitrate ladder against the ladder observed in a live master playlist.
//
// # Matching Strategies
//
// [Reconcile] dispatches to exactly one matcher:
//   - [MatchVariance] : tolerance windows built by [WindowsFor], used when a non-zero variance percentage is set
//   - [MatchUnordered] : membership only, used when unordered matching is requested
//   - [MatchOrdered] : exact value at the exact position (default)
//
// Each matcher returns a [MatchResult] holding the aggregated [Severity], the ordered set of triggered
// [Category] values and a list of per-entry [Finding] records for verbose output.
//
// # Tie-breaking
//
// Ordered and unordered matching locate the first occurrence of an expected value in the observed ladder,
// so duplicate observed values can mask a correct positional match.
// Variance matching keeps the last tolerance window that contains an observed value when windows overlap.
// Both rules are kept for parity with existing monitoring output.
//
// # Errors
//
// Expected ladders come from configuration. An entry that is not a non-negative integer yields a
// [ConfigError] and no [MatchResult]; stream discrepancies are never errors.
//
// Every function in this package is pure and safe to call concurrently.
package ladder
