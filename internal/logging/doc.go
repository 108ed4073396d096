// Package logging configures the process-wide slog logger for dirsearch.
//
// Logs go to stderr by default. With --debug or a configured log file they
// are also written to a size-rotated file under ~/.dirsearch/logs/.
package logging
