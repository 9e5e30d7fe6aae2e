// CLAUDE:SUMMARY Multi-factor stability scoring of selector candidates: hint fit, relocation success, liveness strength.
// Package stability ranks selector candidates by how likely they are to
// keep working, and ranks stored anchors against a caller hint. Scores
// are heuristic and only ever compared against each other or against
// configured cutoffs.
package stability

import (
	"fmt"
	"strings"

	"github.com/mooragehq/moorage/anchors"
	"github.com/mooragehq/moorage/probe"
)

// Component weights. Hint fit dominates because a selector the author
// asked for survives refactors better than one the extractor guessed.
const (
	weightHint     = 0.4
	weightSnippet  = 0.3
	weightLiveness = 0.3

	slowProbe = 500 // milliseconds; slower probes hint at flaky matches
)

// Score is a [0,1] confidence with a human-readable breakdown.
type Score struct {
	Overall float64
	Details []string
}

// Candidate pairs a selector with its score for ranking.
type Candidate struct {
	Selector string
	Score    Score
}

// ScoreStability scores one candidate. hint may be nil; live may be nil
// when the candidate was never probed.
func ScoreStability(candidate string, hint *anchors.Hint, snippetMatched bool, live *probe.Result) Score {
	var details []string

	strat := classify(candidate)
	hintComp := intrinsicQuality(strat)
	details = append(details, fmt.Sprintf("strategy %s base %.2f", strat, hintComp))

	if hint != nil {
		for i, p := range hint.Prefer {
			if p == strat {
				pref := 1.0 - 0.1*float64(i)
				if pref > hintComp {
					hintComp = pref
					details = append(details, fmt.Sprintf("matches preference #%d (%s)", i+1, p))
				}
				break
			}
		}
		if hint.TestID != "" && strat == anchors.StrategyTestID && strings.Contains(candidate, hint.TestID) {
			hintComp = 1.0
			details = append(details, "carries the declared testid")
		}
		if hint.Role != "" && strat == anchors.StrategyRole && strings.Contains(candidate, hint.Role) {
			if hintComp < 0.9 {
				hintComp = 0.9
			}
			details = append(details, "carries the declared role")
		}
	}

	snippetComp := 0.0
	if snippetMatched {
		snippetComp = 1.0
		details = append(details, "source snippet relocated")
	} else {
		details = append(details, "source snippet not relocated")
	}

	liveComp := 0.0
	switch {
	case live == nil:
		details = append(details, "not probed")
	case live.IsAlive && live.IsValid:
		liveComp = 1.0
		details = append(details, "alive and visible")
	case live.IsAlive:
		liveComp = 0.9
		details = append(details, "alive")
	case live.IsValid:
		liveComp = 0.6
		details = append(details, "attached but not visible")
	default:
		details = append(details, "probe found nothing")
	}
	if live != nil && live.CheckTime.Milliseconds() > slowProbe && liveComp > 0 {
		liveComp -= 0.2
		if liveComp < 0 {
			liveComp = 0
		}
		details = append(details, fmt.Sprintf("slow probe (%dms)", live.CheckTime.Milliseconds()))
	}

	overall := weightHint*hintComp + weightSnippet*snippetComp + weightLiveness*liveComp
	if overall > 1 {
		overall = 1
	}
	if overall < 0 {
		overall = 0
	}
	return Score{Overall: overall, Details: details}
}

// PickMostStable returns the highest-scoring candidate. On exactly equal
// scores the earlier candidate wins: extraction order already encodes
// strategy preference, so first-seen is the deterministic tie-break.
func PickMostStable(candidates []Candidate) *Candidate {
	if len(candidates) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score.Overall > candidates[best].Score.Overall {
			best = i
		}
	}
	return &candidates[best]
}

// classify maps a selector to the strategy that produced it.
func classify(selector string) anchors.Strategy {
	switch {
	case strings.Contains(selector, "data-testid") || strings.Contains(selector, "data-test-id") || strings.Contains(selector, "data-cy"):
		return anchors.StrategyTestID
	case strings.HasPrefix(selector, "[role="):
		return anchors.StrategyRole
	case strings.HasPrefix(selector, "text="):
		return anchors.StrategyText
	default:
		return anchors.StrategyCSS
	}
}

// intrinsicQuality is the hint-free prior per strategy. Test ids exist
// for exactly this purpose; structural CSS churns with every layout
// change.
func intrinsicQuality(s anchors.Strategy) float64 {
	switch s {
	case anchors.StrategyTestID:
		return 1.0
	case anchors.StrategyRole:
		return 0.8
	case anchors.StrategyText:
		return 0.7
	default:
		return 0.4
	}
}
