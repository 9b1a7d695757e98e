// Package logger provides structured logging for carmarket services using
// zerolog.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("boundary")
//	log.WithAppError(appErr).Warn("request failed")
package logger
