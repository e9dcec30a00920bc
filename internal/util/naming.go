package util

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ShortHash returns the first 8 characters of a commit hash.
func ShortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

// ProjectSlug returns a filesystem-safe name for a project directory that
// is unique per absolute path.
func ProjectSlug(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	// Hash the path to keep same-named projects apart
	h := sha256.Sum256([]byte(abs))
	base := SafeName(filepath.Base(abs))
	if base == "" {
		base = "root"
	}
	return fmt.Sprintf("%s-%x", base, h[:8]), nil
}

// FileTimestamp renders t as an ISO-8601 UTC timestamp with millisecond
// precision, with ':' and '.' replaced so it can be part of a file name.
func FileTimestamp(t time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(ISOTimestamp(t))
}

// ISOTimestamp renders t as an ISO-8601 UTC timestamp with millisecond
// precision.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// SafeName replaces every character that is not safe in a file name with '_'.
func SafeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), ".")
}
