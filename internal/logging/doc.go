// Package logging provides a simple leveled logging interface for the
// media converter.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (FFmpeg commands and stderr)
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=true.
//
// Conversion code logs through [ForRequest] so that every line carries the
// request ID of the conversion it belongs to:
//
//	rl := logging.ForRequest(id)
//	rl.Info("Converting %s to %s", name, format)
package logging
