// Package database provides SQLite storage for the conversion history of the
// media converter.
//
// Every request to the conversion endpoint, successful or not, is recorded
// with its source name and category, target format, the FFmpeg variant that
// produced the result, whether the software fallback ran, byte counts and
// duration. The history backs GET /api/conversions and the history gauges
// exported by the metrics collector.
//
// The database uses WAL mode and creates its schema on open. It is optional:
// with HISTORY_ENABLED=false the server never opens it.
package database
