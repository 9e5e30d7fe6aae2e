// CLAUDE:SUMMARY Content-addressing of a source line window: bounded context, truncated digest.
// Package snippet content-addresses bounded line windows of source files
// and relocates them after the file has been edited. The hash of a window
// around a line is stable as long as that code does not change, so it
// survives refactors that merely move the code.
package snippet

import (
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidLine is returned when the requested line is outside the file.
var ErrInvalidLine = errors.New("snippet: line number out of range")

// HashOptions controls window size and digest shape.
type HashOptions struct {
	Before     int    // context lines above, default 3
	After      int    // context lines below, default 3
	Algorithm  string // "sha256" (default) or "sha1"
	HashDigits int    // hex characters kept from the digest, default 10
}

func (o *HashOptions) defaults() {
	if o.Before <= 0 {
		o.Before = 3
	}
	if o.After <= 0 {
		o.After = 3
	}
	if o.Algorithm == "" {
		o.Algorithm = "sha256"
	}
	if o.HashDigits <= 0 {
		o.HashDigits = 10
	}
}

// HashResult is an immutable content address for a line window.
// Hash has the form "<algorithm>:<hex[0:digits]>".
type HashResult struct {
	Hash      string
	Snippet   string
	StartLine int
	EndLine   int
}

// Hash reads path and content-addresses the window around the 1-based
// line. The window is clamped to the file, so results near the edges are
// narrower than Before+After+1 lines.
func Hash(path string, line int, opts HashOptions) (*HashResult, error) {
	opts.defaults()

	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	if line < 1 || line > len(lines) {
		return nil, fmt.Errorf("%w: %d not in [1, %d] of %s", ErrInvalidLine, line, len(lines), path)
	}

	start, end, window := windowAt(lines, line, opts.Before, opts.After)
	digest, err := digestWindow(window, opts.Algorithm, opts.HashDigits)
	if err != nil {
		return nil, err
	}
	return &HashResult{
		Hash:      digest,
		Snippet:   window,
		StartLine: start,
		EndLine:   end,
	}, nil
}

// windowAt joins lines [line-before, line+after] clamped to the file.
// Returned bounds are 1-based inclusive.
func windowAt(lines []string, line, before, after int) (start, end int, window string) {
	start = line - before
	if start < 1 {
		start = 1
	}
	end = line + after
	if end > len(lines) {
		end = len(lines)
	}
	return start, end, strings.Join(lines[start-1:end], "\n")
}

func digestWindow(window, algorithm string, digits int) (string, error) {
	var sum []byte
	switch algorithm {
	case "sha256":
		h := sha256.Sum256([]byte(window))
		sum = h[:]
	case "sha1":
		h := sha1.Sum([]byte(window))
		sum = h[:]
	default:
		return "", fmt.Errorf("snippet: unsupported hash algorithm %q", algorithm)
	}
	hex := fmt.Sprintf("%x", sum)
	if digits > len(hex) {
		digits = len(hex)
	}
	return algorithm + ":" + hex[:digits], nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snippet: read %s: %w", path, err)
	}
	lines := strings.Split(string(data), "\n")
	// A trailing newline yields one phantom empty line; drop it so line
	// counts match what editors display.
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines, nil
}
