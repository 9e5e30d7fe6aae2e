// CLAUDE:SUMMARY Additive anchor-vs-hint ranking: exact and partial selector matches, hint values, component names, recency.
package stability

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mooragehq/moorage/anchors"
)

// Additive match weights. Exact lastKnown agreement dwarfs everything
// else: if the caller is already holding the selector we resolved last
// time, that anchor is almost certainly the one they mean.
const (
	matchExact         = 100.0
	matchPartial       = 40.0
	matchTestID        = 30.0
	matchRole          = 20.0
	matchComponent     = 15.0
	matchHashedAnchor  = 10.0
	matchRecent        = 10.0
	matchHighStability = 10.0
)

// MatchConfig bounds the recency and stability bonuses.
type MatchConfig struct {
	RecentWindow  time.Duration // default 7 days
	HighStability int           // 0..100 cutoff, default 80
}

func (c *MatchConfig) defaults() {
	if c.RecentWindow <= 0 {
		c.RecentWindow = 7 * 24 * time.Hour
	}
	if c.HighStability <= 0 {
		c.HighStability = 80
	}
}

// AnchorScore is one anchor's rank against a hint.
type AnchorScore struct {
	Anchor  *anchors.Anchor
	Score   float64
	Reasons []string
}

// MatchAnchors ranks every anchor against the caller's selector hint,
// best first. Equal scores keep declaration order.
func MatchAnchors(list []anchors.Anchor, hint string, cfg MatchConfig) []AnchorScore {
	cfg.defaults()
	now := time.Now()

	scores := make([]AnchorScore, 0, len(list))
	for i := range list {
		a := &list[i]
		s := AnchorScore{Anchor: a}
		add := func(w float64, reason string) {
			s.Score += w
			s.Reasons = append(s.Reasons, reason)
		}

		if lk := a.LastKnown; lk != nil {
			switch {
			case lk.Selector == hint:
				add(matchExact, "exact lastKnown selector match")
			case hint != "" && (strings.Contains(lk.Selector, hint) || strings.Contains(hint, lk.Selector)):
				add(matchPartial, "partial lastKnown selector match")
			}
			if now.Sub(lk.Timestamp) <= cfg.RecentWindow {
				add(matchRecent, "recently resolved")
			}
			if lk.StabilityScore >= cfg.HighStability {
				add(matchHighStability, fmt.Sprintf("high stability (%d)", lk.StabilityScore))
			}
		}

		if h := a.Hint; h != nil {
			// Tolerant containment: matches both [data-testid="x"] and
			// the testid:x shorthand, since either carries the value.
			if h.TestID != "" && strings.Contains(hint, h.TestID) {
				add(matchTestID, fmt.Sprintf("hint carries testid %q", h.TestID))
			}
			if h.Role != "" && strings.Contains(hint, h.Role) {
				add(matchRole, fmt.Sprintf("hint carries role %q", h.Role))
			}
		}

		if name := a.MetaString("component"); name != "" && componentMatches(name, hint) {
			add(matchComponent, fmt.Sprintf("component name %q matches", name))
		}

		if a.SnippetHash != "" {
			add(matchHashedAnchor, "content-addressed anchor")
		}

		scores = append(scores, s)
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores
}

// SelectBestAnchor returns the top-ranked anchor, or nil when the list is
// empty or nothing reaches minScore.
func SelectBestAnchor(list []anchors.Anchor, hint string, minScore float64, cfg MatchConfig) *anchors.Anchor {
	ranked := MatchAnchors(list, hint, cfg)
	if len(ranked) == 0 || ranked[0].Score < minScore {
		return nil
	}
	return ranked[0].Anchor
}

// componentMatches compares a component name against the hint ignoring
// case, hyphens and underscores: LoginForm, login-form and login_form all
// name the same thing.
func componentMatches(name, hint string) bool {
	n := normalizeName(name)
	h := normalizeName(hint)
	if n == "" || h == "" {
		return false
	}
	return strings.Contains(h, n) || strings.Contains(n, h)
}

func normalizeName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}
