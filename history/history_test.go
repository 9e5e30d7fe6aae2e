package history_test

import (
	"context"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/mooragehq/moorage/history"
)

func TestRecordAndRecent(t *testing.T) {
	s, err := history.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	entries := []history.Entry{
		{URL: "https://app.example/login", Hint: "#submit", AnchorID: "login-submit", Selector: `[data-testid="login-submit"]`, Score: 92, Reasons: []string{"anchor matched", "probe alive"}},
		{URL: "https://app.example/cart", Hint: ".checkout", Selector: ".checkout", Score: 40, Reasons: []string{"fallback to initial selector"}},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	// Newest first.
	if got[0].URL != "https://app.example/cart" {
		t.Fatalf("got[0].URL = %q, want the most recent entry first", got[0].URL)
	}
	if got[1].AnchorID != "login-submit" || got[1].Score != 92 {
		t.Fatalf("got[1] = %+v, want preserved anchor id and score", got[1])
	}
	if len(got[1].Reasons) != 2 || got[1].Reasons[0] != "anchor matched" {
		t.Fatalf("reasons = %v, want round-tripped", got[1].Reasons)
	}
	if got[0].Time.IsZero() {
		t.Fatal("timestamp should be populated")
	}
}

func TestByAnchor(t *testing.T) {
	s, err := history.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := s.Record(ctx, history.Entry{URL: "u", Hint: "h", AnchorID: "a1", Selector: "#x", Reasons: []string{"r"}}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Record(ctx, history.Entry{URL: "u", Hint: "h", AnchorID: "a2", Selector: "#y", Reasons: []string{"r"}}); err != nil {
		t.Fatal(err)
	}

	got, err := s.ByAnchor(ctx, "a1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("entries for a1 = %d, want 3", len(got))
	}
}

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "history.db")
	s, err := history.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Record(context.Background(), history.Entry{URL: "u", Hint: "h", Selector: "#x", Reasons: []string{"r"}}); err != nil {
		t.Fatal(err)
	}
}
