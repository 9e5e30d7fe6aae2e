package resolve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/mooragehq/moorage/history"
	"github.com/mooragehq/moorage/probe"
)

func newTestServer(t *testing.T, p probe.Probe, hist *history.Store) *httptest.Server {
	t.Helper()
	svc := NewService(New(Config{}, nil), p, hist)
	r := chi.NewRouter()
	svc.RegisterHTTP(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleResolveTrivial(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, err := http.Post(srv.URL+"/api/resolve", "application/json",
		strings.NewReader(`{"initialSelector": "#submit"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Selector != "#submit" {
		t.Fatalf("selector = %q, want #submit", body.Selector)
	}
}

func TestHandleResolveRequiresSelector(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, err := http.Post(srv.URL+"/api/resolve", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleHistory(t *testing.T) {
	hist, err := history.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { hist.Close() })
	if err := hist.Record(context.Background(), history.Entry{URL: "u", Hint: "#a", Selector: "#a", Reasons: []string{"r"}}); err != nil {
		t.Fatal(err)
	}

	srv := newTestServer(t, nil, hist)
	resp, err := http.Get(srv.URL + "/api/history?limit=5")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var entries []history.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Selector != "#a" {
		t.Fatalf("entries = %+v, want the recorded entry", entries)
	}
}

func TestHandleHistoryDisabled(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	resp, err := http.Get(srv.URL + "/api/history")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
