// Package processinglog is the log collaborator shared by the provider and
// the host. Callers depend on the narrow Logger interface; concrete loggers
// write styled lines to a terminal, JSON lines to the processing log file,
// or keep entries in memory.
package processinglog
