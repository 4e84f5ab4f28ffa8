// Package connection provides the API client for the cricket backend.
//
// HTTPClient owns the base address and the default Authorization
// header. Every call goes through Call (or the Get/Post/Delete helpers),
// which:
//
//   - encodes the JSON body and decodes the JSON response
//   - attaches "Authorization: Bearer <token>" once SetAuthToken is called
//   - maps failures to domain.NetworkError and domain.HTTPError
//   - tags each request with an X-Request-ID
//   - records a Prometheus observation and an OpenTelemetry span
//
// Calls are attempted exactly once. Cancellation comes from the caller's
// context; a response that arrives after cancellation is discarded.
package connection
