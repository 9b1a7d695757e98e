// Package server provides the carmarket HTTP server: Gin behind h2c with a
// middleware stack that reports every failure as a JSON error envelope.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - RequestID: request id generation and propagation
//   - RequestLogger: request logging with duration tracking
//   - Recovery: panics become INTERNAL_ERROR envelopes
//   - BodySizeLimit: oversize bodies become PAYLOAD_TOO_LARGE
//   - RateLimit: per-client sliding window, RATE_LIMITED with Retry-After
//   - Auth: JWT bearer tokens, UNAUTHORIZED / TOKEN_EXPIRED / INVALID_TOKEN
//   - RequireRole: FORBIDDEN for callers without the role
//
// Error rendering lives in server/boundary.
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: health check aggregation
//   - /errors: the error catalog
//   - /errors/:code: one catalog entry
//   - /schemas/error: JSON Schema of the error envelope
package server
