// Package server provides HTTP routing, middleware, and the check endpoint used to run bandwidth checks on demand.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps the whole router; the first one added runs outermost. [Logging] and [Recover] are provided.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Check Handler
//
// [CheckHandler] serves GET /health and GET /check. A check runs through the same [tasks.CheckEngine]
// as the CLI and answers with the JSON form of the URL result. HTTP status follows severity:
//   - 200 : OK or WARNING
//   - 503 : CRITICAL or UNKNOWN
//   - 400 : missing url, malformed ladder or options
//   - 404 : unknown profile
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
