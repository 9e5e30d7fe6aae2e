// CLAUDE:SUMMARY Anchor data model — durable content-addressed references from UI elements to source locations.
// Package anchors defines the anchor data model and the JSON persistence
// layer for the anchor store. An anchor links one UI element to the source
// location that defines it, so a selector can be re-derived after the
// source has been edited.
package anchors

import (
	"encoding/json"
	"time"
)

// Strategy names a selector derivation strategy, in preference order
// declared by the anchor author.
type Strategy string

const (
	StrategyTestID Strategy = "testid"
	StrategyRole   Strategy = "role"
	StrategyText   Strategy = "text"
	StrategyCSS    Strategy = "css"
)

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyTestID, StrategyRole, StrategyText, StrategyCSS:
		return true
	}
	return false
}

// Source is the location of the defining code at anchor creation time.
// Line is 1-based; Column is 0-based and may be 0 when unknown.
type Source struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// Hint carries the author's preferred strategies and any concrete values
// known at creation time.
type Hint struct {
	Prefer       []Strategy `json:"prefer,omitempty"`
	TestID       string     `json:"testid,omitempty"`
	Role         string     `json:"role,omitempty"`
	AriaLabel    string     `json:"ariaLabel,omitempty"`
	ExpectedText string     `json:"expectedText,omitempty"`
}

// SnippetContext records how the snippet hash was computed, so relocation
// can rebuild identical windows.
type SnippetContext struct {
	ContextBefore int    `json:"contextBefore"`
	ContextAfter  int    `json:"contextAfter"`
	Algorithm     string `json:"algorithm"`
	HashDigits    int    `json:"hashDigits"`
}

// LastKnown is the most recent successful resolution for an anchor.
// StabilityScore is an integer projection of the 0..1 score onto 0..100.
type LastKnown struct {
	Selector       string    `json:"selector"`
	StabilityScore int       `json:"stabilityScore"`
	Timestamp      time.Time `json:"timestamp"`
}

// Anchor is a durable reference to one UI element's defining source
// location. SnippetContext is only meaningful when Snippet is set: fuzzy
// relocation needs the original text, not just the hash.
type Anchor struct {
	ID             string                     `json:"id"`
	Source         Source                     `json:"source"`
	Hint           *Hint                      `json:"hint,omitempty"`
	SnippetHash    string                     `json:"snippetHash,omitempty"`
	Snippet        string                     `json:"snippet,omitempty"`
	SnippetContext *SnippetContext            `json:"snippetContext,omitempty"`
	Subselector    string                     `json:"subselector,omitempty"`
	LastKnown      *LastKnown                 `json:"lastKnown,omitempty"`
	LastSeen       *time.Time                 `json:"lastSeen,omitempty"`
	Meta           map[string]json.RawMessage `json:"meta,omitempty"`
}

// Store is the unit of persistence: a versioned list of anchors.
type Store struct {
	Version string   `json:"version"`
	Anchors []Anchor `json:"anchors"`
}

// Clone returns a deep copy of the store. Resolution write-back mutates a
// clone so the caller's loaded store is never touched.
func (s *Store) Clone() *Store {
	out := &Store{Version: s.Version, Anchors: make([]Anchor, len(s.Anchors))}
	for i, a := range s.Anchors {
		out.Anchors[i] = a.clone()
	}
	return out
}

func (a Anchor) clone() Anchor {
	b := a
	if a.Hint != nil {
		h := *a.Hint
		h.Prefer = append([]Strategy(nil), a.Hint.Prefer...)
		b.Hint = &h
	}
	if a.SnippetContext != nil {
		sc := *a.SnippetContext
		b.SnippetContext = &sc
	}
	if a.LastKnown != nil {
		lk := *a.LastKnown
		b.LastKnown = &lk
	}
	if a.LastSeen != nil {
		ls := *a.LastSeen
		b.LastSeen = &ls
	}
	if a.Meta != nil {
		m := make(map[string]json.RawMessage, len(a.Meta))
		for k, v := range a.Meta {
			m[k] = append(json.RawMessage(nil), v...)
		}
		b.Meta = m
	}
	return b
}

// MetaString returns the meta value for key if it is a JSON string.
func (a *Anchor) MetaString(key string) string {
	raw, ok := a.Meta[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
