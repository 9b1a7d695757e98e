// Package endpoint provides the built-in routes of the carmarket API:
// health, the error catalog and the error envelope schema.
package endpoint
