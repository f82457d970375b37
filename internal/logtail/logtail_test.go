package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	stamp := time.Date(2026, 10, 17, 21, 1, 5, 0, time.Local)

	tests := []struct {
		name  string
		input string
		want  Entry
	}{
		{
			name:  "prefixed line",
			input: "showreel 2026/10/17 21:01:05 track 2 selected",
			want:  Entry{Time: stamp, HasTime: true, Prefix: "showreel", Message: "track 2 selected", Level: LevelInfo},
		},
		{
			name:  "bare line",
			input: "2026/10/17 21:01:05 play rejected: media not ready",
			want:  Entry{Time: stamp, HasTime: true, Message: "play rejected: media not ready", Level: LevelError},
		},
		{
			name:  "warning",
			input: "showreel 2026/10/17 21:01:05 mpv session 3: dropped playback.TimeUpdate",
			want:  Entry{Time: stamp, HasTime: true, Prefix: "showreel", Message: "mpv session 3: dropped playback.TimeUpdate", Level: LevelWarn},
		},
		{
			name:  "no timestamp",
			input: "panic: runtime error",
			want:  Entry{Message: "panic: runtime error", Level: LevelError},
		},
		{
			name:  "short line",
			input: "hello",
			want:  Entry{Message: "hello", Level: LevelInfo},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !got.Time.Equal(tt.want.Time) {
				t.Fatalf("Time = %v, want %v", got.Time, tt.want.Time)
			}
			got.Time, tt.want.Time = time.Time{}, time.Time{}
			if got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadEntries_SkipsBlankLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "showreel.log")
	body := "showreel 2026/10/17 21:01:05 engine started\n\n   \nshowreel 2026/10/17 21:01:06 seek failed: closed\n"
	if err := os.WriteFile(logPath, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := ReadEntries(logPath, 0)
	if err != nil {
		t.Fatalf("ReadEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[1].Level != LevelError || entries[1].Level.String() != "ERROR" {
		t.Fatalf("entries[1].Level = %v, want ERROR", entries[1].Level)
	}
}
