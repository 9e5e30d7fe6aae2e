// CLAUDE:SUMMARY Tiered selector extraction from source markup: fast testid scan, attribute scan, full parse, regex fallback.
// Package selext derives candidate UI selectors from the source location
// that defines an element. Extraction is tiered: each tier does strictly
// more work than the last and runs under its own timeout, so a
// pathological file can never block the caller past the tier ceilings.
// The final regex heuristic has no timer and always terminates quickly.
package selext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config bounds each timed tier. Zero values take the defaults.
type Config struct {
	FastTimeout time.Duration // testid-only scan, default 300ms
	AttrTimeout time.Duration // attribute scan, default 600ms
	FullTimeout time.Duration // full structural parse, default 900ms
}

func (c *Config) defaults() {
	if c.FastTimeout <= 0 {
		c.FastTimeout = 300 * time.Millisecond
	}
	if c.AttrTimeout <= 0 {
		c.AttrTimeout = 600 * time.Millisecond
	}
	if c.FullTimeout <= 0 {
		c.FullTimeout = 900 * time.Millisecond
	}
}

// Extraction is an ordered list of candidate selectors, most preferred
// first, with an audit trail of how they were derived.
type Extraction struct {
	Selectors []string
	Reasons   []string
}

// Extract derives candidate selectors for the element defined at the
// 1-based line (and 0-based column) of path. Returns nil when nothing can
// be derived; errors only when the source file itself cannot be read.
// Timed-out tiers are skipped, never surfaced as errors.
func Extract(ctx context.Context, path string, line, column int, cfg Config) (*Extraction, error) {
	cfg.defaults()

	src, err := readSource(path)
	if err != nil {
		return nil, err
	}
	if line < 1 || line > len(src.lines) {
		return nil, fmt.Errorf("selext: line %d not in [1, %d] of %s", line, len(src.lines), path)
	}

	component := isComponentSource(path)

	tiers := []struct {
		name    string
		timeout time.Duration
		fn      func() *Extraction
	}{
		{"fast", cfg.FastTimeout, func() *Extraction { return fastTier(src, line, column) }},
		{"attr", cfg.AttrTimeout, func() *Extraction { return attrTier(src, line) }},
	}
	if component {
		tiers = append(tiers, struct {
			name    string
			timeout time.Duration
			fn      func() *Extraction
		}{"full", cfg.FullTimeout, func() *Extraction { return fullComponentTier(src, line) }})
	} else {
		tiers = append(tiers, struct {
			name    string
			timeout time.Duration
			fn      func() *Extraction
		}{"full", cfg.FullTimeout, func() *Extraction { return fullMarkupTier(src, line) }})
	}

	for _, t := range tiers {
		res := runTier(ctx, t.timeout, t.fn)
		if res != nil && len(res.Selectors) > 0 {
			res.Reasons = append([]string{"tier " + t.name + " produced candidates"}, res.Reasons...)
			return res, nil
		}
	}

	// Last resort. No timer: the heuristic is a bounded regex pass.
	if res := heuristicTier(src, line); res != nil {
		res.Reasons = append([]string{"heuristic fallback produced candidates"}, res.Reasons...)
		return res, nil
	}
	return nil, nil
}

// runTier races fn against its timer. A losing computation keeps running
// in the background until natural completion; its result is discarded.
// Cheaper than cooperative cancellation plumbing through every tier, at
// the cost of briefly leaked work on timeout.
func runTier(ctx context.Context, timeout time.Duration, fn func() *Extraction) *Extraction {
	if ctx.Err() != nil {
		return nil
	}
	ch := make(chan *Extraction, 1)
	go func() { ch <- fn() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return nil
	}
}

// isComponentSource reports whether path is component source (JSX-like)
// rather than plain markup.
func isComponentSource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsx", ".tsx", ".vue", ".svelte", ".js", ".ts", ".mjs":
		return true
	}
	return false
}

type sourceFile struct {
	path  string
	raw   string
	lines []string
}

func readSource(path string) (*sourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("selext: read %s: %w", path, err)
	}
	raw := string(data)
	lines := strings.Split(raw, "\n")
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return &sourceFile{path: path, raw: raw, lines: lines}, nil
}
