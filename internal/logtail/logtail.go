package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Level is the severity inferred from a log message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Entry is one parsed log line.
type Entry struct {
	Time    time.Time
	HasTime bool
	Prefix  string
	Message string
	Level   Level
}

// timeLayout matches log.LstdFlags.
const timeLayout = "2006/01/02 15:04:05"

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// ReadEntries is Read followed by Parse on every non-blank line.
func ReadEntries(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Parse splits a line written by the standard logger, optionally with a
// prefix, into its parts. Lines that do not carry a timestamp are kept whole
// as the message.
func Parse(line string) Entry {
	e := Entry{Message: line}

	rest := line
	fields := strings.SplitN(rest, " ", 4)
	if len(fields) >= 3 {
		if ts, err := time.ParseInLocation(timeLayout, fields[0]+" "+fields[1], time.Local); err == nil {
			e.Time, e.HasTime = ts, true
			rest = strings.Join(fields[2:], " ")
		} else if len(fields) == 4 {
			if ts, err := time.ParseInLocation(timeLayout, fields[1]+" "+fields[2], time.Local); err == nil {
				e.Time, e.HasTime = ts, true
				e.Prefix = fields[0]
				rest = fields[3]
			}
		}
	}
	if e.HasTime {
		e.Message = rest
	}
	e.Level = classify(e.Message)
	return e
}

func classify(msg string) Level {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "failed"),
		strings.Contains(lower, "error"),
		strings.Contains(lower, "rejected"),
		strings.Contains(lower, "panic"):
		return LevelError
	case strings.Contains(lower, "warn"),
		strings.Contains(lower, "dropped"),
		strings.Contains(lower, "retry"):
		return LevelWarn
	}
	return LevelInfo
}

// String returns the level label.
func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}
