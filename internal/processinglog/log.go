package processinglog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Severity is the level of a processing log entry.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Logger accepts (severity, message) pairs.
type Logger interface {
	Add(severity Severity, message string)
}

// Entry is a single recorded log line.
type Entry struct {
	Time     time.Time
	Severity Severity
	Message  string
}

// timeFormat is shared by the file writer and ReadFile.
const timeFormat = time.RFC3339

// Charm forwards entries to a charmbracelet logger.
type Charm struct {
	logger *log.Logger
}

// NewCharm returns a Logger that writes styled lines to w.
func NewCharm(w io.Writer, prefix string) *Charm {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: prefix,
		Level:  log.InfoLevel,
	})
	logger.SetStyles(levelStyles())
	return &Charm{logger: logger}
}

// SetLevel sets the lowest level written.
func (c *Charm) SetLevel(level log.Level) { c.logger.SetLevel(level) }

// Add implements Logger.
func (c *Charm) Add(severity Severity, message string) {
	switch severity {
	case SeverityError:
		c.logger.Error(message)
	case SeverityWarning:
		c.logger.Warn(message)
	default:
		c.logger.Info(message)
	}
}

func levelStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString(string(SeverityError)).
		Bold(true).
		Foreground(lipgloss.Color("204"))
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString(string(SeverityWarning)).
		Bold(true).
		Foreground(lipgloss.Color("192"))
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString(string(SeverityInfo)).
		Foreground(lipgloss.Color("86"))
	return styles
}

// File appends JSON lines to the processing log file.
type File struct {
	mu     sync.Mutex
	f      *os.File
	logger *log.Logger
}

// NewFile opens (or creates) the log file at path in append mode.
func NewFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening processing log %s: %w", path, err)
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           log.InfoLevel,
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Formatter:       log.JSONFormatter,
	})
	return &File{f: f, logger: logger}, nil
}

// Add implements Logger.
func (l *File) Add(severity Severity, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch severity {
	case SeverityError:
		l.logger.Error(message)
	case SeverityWarning:
		l.logger.Warn(message)
	default:
		l.logger.Info(message)
	}
}

// Close closes the underlying file.
func (l *File) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// Memory keeps entries in memory. The zero value is ready to use.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

// Add implements Logger.
func (m *Memory) Add(severity Severity, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{Time: time.Now(), Severity: severity, Message: message})
}

// Entries returns a copy of the recorded entries.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Count returns the number of entries with the given severity.
func (m *Memory) Count(severity Severity) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Severity == severity {
			n++
		}
	}
	return n
}

// Multi fans entries out to several loggers.
type Multi []Logger

// Add implements Logger.
func (m Multi) Add(severity Severity, message string) {
	for _, l := range m {
		if l != nil {
			l.Add(severity, message)
		}
	}
}

// Discard drops every entry.
var Discard Logger = discard{}

type discard struct{}

func (discard) Add(Severity, string) {}
