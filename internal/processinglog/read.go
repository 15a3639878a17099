package processinglog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// fileLine mirrors the keys written by the charm JSON formatter.
type fileLine struct {
	Time  string `json:"time"`
	Level string `json:"level"`
	Msg   string `json:"msg"`
}

// ReadFile parses a processing log written by File. Lines that are not valid
// JSON are skipped. A missing file yields no entries.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening processing log %s: %w", path, err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line fileLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		ts, _ := time.Parse(timeFormat, line.Time)
		entries = append(entries, Entry{
			Time:     ts,
			Severity: severityFromLevel(line.Level),
			Message:  line.Msg,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading processing log %s: %w", path, err)
	}
	return entries, nil
}

func severityFromLevel(level string) Severity {
	switch strings.ToLower(level) {
	case "error", "fatal":
		return SeverityError
	case "warn", "warning":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
