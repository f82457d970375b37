package ui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"  Cantilever  ", 20, "Cantilever"},
		{"Cantilever Scaffolding", 10, "Cantileve…"},
		{"Cantilever", 3, "Can"},
		{"Cantilever", 0, "Cantilever"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"assets/home/video1.mp4", 40, "assets/home/video1.mp4"},
		{"assets/home/video1.mp4", 15, "ass…/video1.mp4"},
		{"assets/home/video1.mp4", 12, "…/video1.mp4"},
		{"abcdefghijklmnop", 7, "abc…nop"},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncateMiddle(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncateMiddle(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
