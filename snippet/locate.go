// CLAUDE:SUMMARY Fuzzy relocation of a hashed line window: exponential-skip coarse search plus linear refinement, deadline-bounded.
package snippet

import (
	"time"
)

// refineSpan is how far the linear refinement phase scans around the best
// coarse candidate.
const refineSpan = 8

// Target identifies the window being relocated. Snippet is the original
// window text; leaving it empty disables fuzzy matching, so only an exact
// hash match can succeed.
type Target struct {
	Hash    string
	Snippet string
}

// LocateOptions bounds the search. Zero values take conservative defaults;
// Timeout zero means no deadline.
type LocateOptions struct {
	HashOptions
	MaxRadius      int           // furthest coarse step, default 40
	HighConfidence float64       // early-return similarity, default 0.95
	FuzzyThreshold float64       // minimum similarity to report, default 0.7
	Timeout        time.Duration
}

func (o *LocateOptions) defaults() {
	o.HashOptions.defaults()
	if o.MaxRadius <= 0 {
		o.MaxRadius = 40
	}
	if o.HighConfidence <= 0 {
		o.HighConfidence = 0.95
	}
	if o.FuzzyThreshold <= 0 {
		o.FuzzyThreshold = 0.7
	}
}

// Match is a relocation answer. Steps counts coarse probes beyond the
// initial check at the original line.
type Match struct {
	Line  int
	Exact bool
	Score float64
	Steps int
}

// Locate re-finds the line whose window matches target after the file has
// been edited. The original line is checked first; an exact hash match
// there short-circuits everything. Otherwise an exponential-skip search
// radiates outward, then a linear pass refines the best fuzzy candidate.
// Returns nil when nothing matches confidently enough: hash-only callers
// never get a guessed relocation.
func Locate(path string, target Target, originalLine int, opts LocateOptions) (*Match, error) {
	opts.defaults()

	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	var deadline time.Time
	if opts.Timeout > 0 {
		deadline = time.Now().Add(opts.Timeout)
	}

	s := &search{
		lines:  lines,
		target: target,
		opts:   opts,
		fuzzy:  target.Snippet != "",
		tested: make(map[int]bool),
	}

	// Cheap common case: the code did not move. The initial check does
	// not count as a search step.
	if m := s.probe(originalLine); m != nil && m.Exact {
		m.Steps = 0
		return m, nil
	}
	s.steps = 0

	// Coarse phase: exponential skip outward from the original line.
	for step := 1; step <= opts.MaxRadius; step *= 2 {
		if expired(deadline) {
			break
		}
		for _, line := range []int{originalLine - step, originalLine + step} {
			if m := s.probe(line); m != nil && m.Exact {
				m.Steps = s.steps
				return m, nil
			}
		}
		if s.best != nil && s.best.Score >= opts.HighConfidence {
			return s.finish()
		}
	}

	// Refinement phase: linear scan around the best coarse candidate.
	if s.best != nil && s.best.Score < opts.HighConfidence {
		center := s.best.Line
		for line := center - refineSpan; line <= center+refineSpan; line++ {
			if expired(deadline) {
				break
			}
			if m := s.probe(line); m != nil && m.Exact {
				m.Steps = s.steps
				return m, nil
			}
		}
	}

	return s.finish()
}

type search struct {
	lines  []string
	target Target
	opts   LocateOptions
	fuzzy  bool
	tested map[int]bool
	best   *Match
	steps  int
}

// probe hashes the window at line and, in fuzzy mode, tracks the best
// similarity candidate. Exact matches are returned to the caller; fuzzy
// candidates accumulate in s.best. Ties prefer the higher score, then the
// larger line number.
func (s *search) probe(line int) *Match {
	if line < 1 || line > len(s.lines) || s.tested[line] {
		return nil
	}
	s.tested[line] = true
	s.steps++

	_, _, window := windowAt(s.lines, line, s.opts.Before, s.opts.After)
	digest, err := digestWindow(window, s.opts.Algorithm, s.opts.HashDigits)
	if err == nil && digest == s.target.Hash {
		return &Match{Line: line, Exact: true, Score: 1.0}
	}

	if !s.fuzzy {
		return nil
	}
	score := Similarity(window, s.target.Snippet)
	if score < 0.5 {
		return nil
	}
	if s.best == nil || score > s.best.Score || (score == s.best.Score && line > s.best.Line) {
		s.best = &Match{Line: line, Score: score}
	}
	return nil
}

// finish applies the fuzzy threshold to whatever the search accumulated.
func (s *search) finish() (*Match, error) {
	if s.best == nil || s.best.Score < s.opts.FuzzyThreshold {
		return nil, nil
	}
	m := *s.best
	m.Steps = s.steps
	return &m, nil
}

func expired(deadline time.Time) bool {
	return !deadline.IsZero() && time.Now().After(deadline)
}
