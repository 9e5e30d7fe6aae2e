package stability_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mooragehq/moorage/anchors"
	"github.com/mooragehq/moorage/probe"
	"github.com/mooragehq/moorage/stability"
)

func TestScoreStabilityOrdering(t *testing.T) {
	hint := &anchors.Hint{
		Prefer: []anchors.Strategy{anchors.StrategyTestID, anchors.StrategyRole},
		TestID: "save-btn",
	}
	alive := &probe.Result{IsAlive: true, IsValid: true, CheckTime: 20 * time.Millisecond}

	testid := stability.ScoreStability(`[data-testid="save-btn"]`, hint, true, alive)
	role := stability.ScoreStability(`[role="button"]`, hint, true, alive)
	css := stability.ScoreStability("div > ul > li:nth-of-type(3)", hint, true, alive)

	if !(testid.Overall > role.Overall && role.Overall > css.Overall) {
		t.Fatalf("want testid > role > css, got %.2f / %.2f / %.2f", testid.Overall, role.Overall, css.Overall)
	}
	if testid.Overall != 1.0 {
		t.Fatalf("fully-hinted, relocated, alive testid = %.2f, want 1.0", testid.Overall)
	}
	if len(testid.Details) == 0 {
		t.Fatal("details must not be empty")
	}
}

func TestScoreStabilityBounds(t *testing.T) {
	cases := []struct {
		name string
		sel  string
		hint *anchors.Hint
		snip bool
		live *probe.Result
	}{
		{"nothing", "div", nil, false, nil},
		{"dead probe", "#x", nil, false, &probe.Result{}},
		{"slow probe", `[data-testid="a"]`, nil, true, &probe.Result{IsAlive: true, CheckTime: 2 * time.Second}},
		{"hidden", `[role="tab"]`, nil, true, &probe.Result{IsValid: true}},
	}
	for _, tc := range cases {
		s := stability.ScoreStability(tc.sel, tc.hint, tc.snip, tc.live)
		if s.Overall < 0 || s.Overall > 1 {
			t.Fatalf("%s: overall = %v out of [0,1]", tc.name, s.Overall)
		}
	}
}

func TestScoreStabilitySlowProbePenalty(t *testing.T) {
	fast := stability.ScoreStability("#a", nil, true, &probe.Result{IsAlive: true, CheckTime: 10 * time.Millisecond})
	slow := stability.ScoreStability("#a", nil, true, &probe.Result{IsAlive: true, CheckTime: 3 * time.Second})
	if slow.Overall >= fast.Overall {
		t.Fatalf("slow probe %.2f should score below fast probe %.2f", slow.Overall, fast.Overall)
	}
}

func TestPickMostStableFirstSeenTieBreak(t *testing.T) {
	a := stability.Candidate{Selector: "#a", Score: stability.Score{Overall: 0.8}}
	b := stability.Candidate{Selector: "#b", Score: stability.Score{Overall: 0.8}}
	c := stability.Candidate{Selector: "#c", Score: stability.Score{Overall: 0.5}}

	got := stability.PickMostStable([]stability.Candidate{a, b, c})
	if got == nil || got.Selector != "#a" {
		t.Fatalf("winner = %+v, want first-seen #a", got)
	}
	if stability.PickMostStable(nil) != nil {
		t.Fatal("empty input must yield nil")
	}
}

func TestMatchAnchorsExactBeatsPartial(t *testing.T) {
	list := []anchors.Anchor{
		{
			ID:        "partial",
			Source:    anchors.Source{File: "a.tsx", Line: 1},
			LastKnown: &anchors.LastKnown{Selector: "#submit-button", StabilityScore: 50, Timestamp: time.Now()},
		},
		{
			ID:        "exact",
			Source:    anchors.Source{File: "b.tsx", Line: 1},
			LastKnown: &anchors.LastKnown{Selector: "#submit", StabilityScore: 50, Timestamp: time.Now()},
		},
	}
	ranked := stability.MatchAnchors(list, "#submit", stability.MatchConfig{})
	if ranked[0].Anchor.ID != "exact" {
		t.Fatalf("top anchor = %s, want exact match ranked strictly above partial", ranked[0].Anchor.ID)
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Fatalf("scores %v / %v, want strict ordering", ranked[0].Score, ranked[1].Score)
	}
}

func TestMatchAnchorsHintValueSyntaxes(t *testing.T) {
	list := []anchors.Anchor{{
		ID:     "a",
		Source: anchors.Source{File: "a.tsx", Line: 1},
		Hint:   &anchors.Hint{TestID: "cart-checkout", Role: "button"},
	}}

	for _, hint := range []string{`[data-testid="cart-checkout"]`, "testid:cart-checkout"} {
		ranked := stability.MatchAnchors(list, hint, stability.MatchConfig{})
		if ranked[0].Score < 30 {
			t.Fatalf("hint %q: score = %v, want testid bonus", hint, ranked[0].Score)
		}
	}
}

func TestMatchAnchorsComponentNameInsensitive(t *testing.T) {
	list := []anchors.Anchor{{
		ID:     "a",
		Source: anchors.Source{File: "a.tsx", Line: 1},
		Meta:   map[string]json.RawMessage{"component": json.RawMessage(`"LoginForm"`)},
	}}
	ranked := stability.MatchAnchors(list, "login-form submit", stability.MatchConfig{})
	if ranked[0].Score < 15 {
		t.Fatalf("score = %v, want component-name bonus for hyphenated spelling", ranked[0].Score)
	}
}

func TestMatchAnchorsBonuses(t *testing.T) {
	old := time.Now().Add(-30 * 24 * time.Hour)
	list := []anchors.Anchor{
		{
			ID:          "hashed-recent-stable",
			Source:      anchors.Source{File: "a.tsx", Line: 1},
			SnippetHash: "sha256:ab12cd34ef",
			LastKnown:   &anchors.LastKnown{Selector: "#x", StabilityScore: 95, Timestamp: time.Now()},
		},
		{
			ID:        "plain-old",
			Source:    anchors.Source{File: "b.tsx", Line: 1},
			LastKnown: &anchors.LastKnown{Selector: "#y", StabilityScore: 10, Timestamp: old},
		},
	}
	ranked := stability.MatchAnchors(list, "unrelated-hint", stability.MatchConfig{})
	if ranked[0].Anchor.ID != "hashed-recent-stable" {
		t.Fatalf("top = %s, want the hashed, recent, stable anchor", ranked[0].Anchor.ID)
	}
	if ranked[0].Score != 30 {
		t.Fatalf("score = %v, want 30 (hash + recency + stability)", ranked[0].Score)
	}
}

func TestSelectBestAnchor(t *testing.T) {
	if got := stability.SelectBestAnchor(nil, "#x", 1, stability.MatchConfig{}); got != nil {
		t.Fatalf("empty list: got %+v, want nil", got)
	}

	list := []anchors.Anchor{{
		ID:        "only",
		Source:    anchors.Source{File: "a.tsx", Line: 1},
		LastKnown: &anchors.LastKnown{Selector: "#submit", StabilityScore: 10, Timestamp: time.Now().Add(-365 * 24 * time.Hour)},
	}}

	if got := stability.SelectBestAnchor(list, "#submit", 10, stability.MatchConfig{}); got == nil || got.ID != "only" {
		t.Fatalf("got %+v, want the exact-match anchor", got)
	}
	if got := stability.SelectBestAnchor(list, "#nothing-in-common", 10, stability.MatchConfig{}); got != nil {
		t.Fatalf("got %+v, want nil below minScore", got)
	}
}
