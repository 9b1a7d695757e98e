// Package middleware holds the gin middleware of the carmarket API. Every
// failure is reported through boundary.Abort, so clients only ever see the
// JSON error envelope.
package middleware
