package util

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestShortHash(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0123456789abcdef", "01234567"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ShortHash(tt.in); got != tt.want {
			t.Errorf("ShortHash(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProjectSlug(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "one", "my app")
	b := filepath.Join(root, "two", "my app")

	slugA, err := ProjectSlug(a)
	if err != nil {
		t.Fatalf("ProjectSlug: %v", err)
	}
	slugB, err := ProjectSlug(b)
	if err != nil {
		t.Fatalf("ProjectSlug: %v", err)
	}

	if slugA == slugB {
		t.Errorf("same-named projects share slug %q", slugA)
	}
	if !strings.HasPrefix(slugA, "my_app-") {
		t.Errorf("slug %q does not start with sanitized base name", slugA)
	}
	if len(slugA) != len("my_app-")+16 {
		t.Errorf("unexpected slug length: %q", slugA)
	}

	again, _ := ProjectSlug(a)
	if again != slugA {
		t.Errorf("slug not stable: %q vs %q", again, slugA)
	}
}

func TestFileTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 123_000_000, time.UTC)
	if got, want := ISOTimestamp(ts), "2024-03-05T14:07:09.123Z"; got != want {
		t.Errorf("ISOTimestamp = %q, want %q", got, want)
	}
	if got, want := FileTimestamp(ts), "2024-03-05T14-07-09-123Z"; got != want {
		t.Errorf("FileTimestamp = %q, want %q", got, want)
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"feat/x", "feat_x"},
		{"my app", "my_app"},
		{"v1.2.3", "v1.2.3"},
		{"..", ""},
		{`a\b:c`, "a_b_c"},
	}
	for _, tt := range tests {
		if got := SafeName(tt.in); got != tt.want {
			t.Errorf("SafeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
