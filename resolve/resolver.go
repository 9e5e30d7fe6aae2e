// CLAUDE:SUMMARY The fail-open resolution pipeline: match anchor, relocate snippet, extract candidates, probe, score, write back.
// Package resolve composes anchor matching, snippet relocation, selector
// extraction, liveness probing and stability scoring into one pipeline.
// Every stage degrades to a safer fallback instead of raising; the worst
// possible outcome is the caller's own initial selector, unchanged.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mooragehq/moorage/anchors"
	"github.com/mooragehq/moorage/history"
	"github.com/mooragehq/moorage/probe"
	"github.com/mooragehq/moorage/selext"
	"github.com/mooragehq/moorage/snippet"
	"github.com/mooragehq/moorage/stability"
)

// Persister is the effectful write-back strategy: one method, supplied by
// callers that want the resolver to persist the updated store itself.
// Callers that prefer pull-based persistence leave it nil and read
// Resolution.UpdatedStore instead.
type Persister interface {
	Persist(ctx context.Context, store *anchors.Store) error
}

// Sink receives resolution outcomes for the audit log. history.Store
// satisfies it.
type Sink interface {
	Record(ctx context.Context, e history.Entry) error
}

// Request is one resolution call.
type Request struct {
	URL             string
	InitialSelector string
	AnchorsPath     string
	WriteBack       bool
	Probe           probe.Probe
	Persist         Persister
}

// Resolution is the pipeline's answer. Reasons is an append-only audit
// trail of every decision taken; it is non-empty on any non-trivial path.
type Resolution struct {
	Selector     string
	Subselector  string
	AnchorID     string
	Stability    *stability.Score
	Reasons      []string
	Err          error
	UpdatedStore *anchors.Store
}

// Resolver runs resolution requests under one configuration.
type Resolver struct {
	cfg    Config
	logger *slog.Logger
	sink   Sink
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithSink attaches an audit sink for resolution outcomes.
func WithSink(s Sink) Option {
	return func(r *Resolver) { r.sink = s }
}

// New creates a Resolver. The config is normalized once here.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Resolver {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{cfg: cfg, logger: logger}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve runs the pipeline. It never panics through to the caller and
// never returns an unusable result: any internal failure falls back to
// the request's initial selector with the error attached.
func (r *Resolver) Resolve(ctx context.Context, req Request) (res Resolution) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("resolve: recovered panic", "panic", p)
			res = Resolution{
				Selector: req.InitialSelector,
				Err:      fmt.Errorf("resolve: internal error: %v", p),
				Reasons:  append(res.Reasons, fmt.Sprintf("internal error, fell back to initial selector: %v", p)),
			}
		}
		r.record(ctx, req, res)
	}()
	return r.run(ctx, req)
}

func (r *Resolver) run(ctx context.Context, req Request) Resolution {
	if req.AnchorsPath == "" {
		return Resolution{Selector: req.InitialSelector}
	}

	var reasons []string
	say := func(format string, args ...any) {
		reasons = append(reasons, fmt.Sprintf(format, args...))
	}

	store, err := anchors.Load(req.AnchorsPath)
	if err != nil {
		say("anchor store unusable, kept initial selector: %v", err)
		return Resolution{Selector: req.InitialSelector, Reasons: reasons}
	}
	say("loaded %d anchors from %s", len(store.Anchors), req.AnchorsPath)

	matchCfg := stability.MatchConfig{
		RecentWindow:  r.cfg.Match.RecentWindow,
		HighStability: r.cfg.Match.HighStability,
	}
	anchor := stability.SelectBestAnchor(store.Anchors, req.InitialSelector, r.cfg.Match.MinScore, matchCfg)
	if anchor == nil {
		say("no anchor matched the hint, kept initial selector")
		return Resolution{Selector: req.InitialSelector, Reasons: reasons}
	}
	say("matched anchor %q", anchor.ID)

	winner := r.rederive(ctx, req, anchor, &reasons)

	if winner == nil {
		// Successive fallbacks: last known good selector, then the
		// caller's own.
		if anchor.LastKnown != nil {
			say("fell back to last known selector %q", anchor.LastKnown.Selector)
			return Resolution{
				Selector:    anchor.LastKnown.Selector,
				Subselector: anchor.Subselector,
				AnchorID:    anchor.ID,
				Reasons:     reasons,
			}
		}
		say("no last known selector, kept initial selector")
		return Resolution{Selector: req.InitialSelector, AnchorID: anchor.ID, Reasons: reasons}
	}

	say("selected %q (stability %.2f)", winner.Selector, winner.Score.Overall)
	res := Resolution{
		Selector:    winner.Selector,
		Subselector: anchor.Subselector,
		AnchorID:    anchor.ID,
		Stability:   &winner.Score,
		Reasons:     reasons,
	}
	if req.WriteBack {
		r.writeBack(ctx, req, store, anchor.ID, winner, &res)
	}
	return res
}

// rederive runs the snippet → extraction → probing → scoring stages.
// Every failure is recorded and returns nil so the caller falls back.
func (r *Resolver) rederive(ctx context.Context, req Request, anchor *anchors.Anchor, reasons *[]string) *stability.Candidate {
	say := func(format string, args ...any) {
		*reasons = append(*reasons, fmt.Sprintf(format, args...))
	}

	if anchor.SnippetHash == "" || anchor.Source.File == "" {
		say("anchor has no snippet hash, skipped source re-derivation")
		return nil
	}

	path := anchor.Source.File
	if !filepath.IsAbs(path) {
		base, err := filepath.Abs(req.AnchorsPath)
		if err != nil {
			say("could not resolve anchors path: %v", err)
			return nil
		}
		path = filepath.Join(filepath.Dir(base), path)
	}

	locOpts := snippet.LocateOptions{
		MaxRadius:      r.cfg.Snippet.MaxRadius,
		HighConfidence: r.cfg.Snippet.HighConfidence,
		FuzzyThreshold: r.cfg.Snippet.FuzzyThreshold,
		Timeout:        r.cfg.Snippet.Timeout,
	}
	if sc := anchor.SnippetContext; sc != nil {
		locOpts.HashOptions = snippet.HashOptions{
			Before:     sc.ContextBefore,
			After:      sc.ContextAfter,
			Algorithm:  sc.Algorithm,
			HashDigits: sc.HashDigits,
		}
	}
	match, err := snippet.Locate(path, snippet.Target{Hash: anchor.SnippetHash, Snippet: anchor.Snippet}, anchor.Source.Line, locOpts)
	if err != nil {
		say("snippet relocation failed: %v", err)
		return nil
	}
	if match == nil {
		say("snippet not found near line %d of %s", anchor.Source.Line, path)
		return nil
	}
	if match.Exact {
		say("snippet relocated exactly to line %d", match.Line)
	} else {
		say("snippet relocated fuzzily to line %d (similarity %.2f)", match.Line, match.Score)
	}

	extraction, err := selext.Extract(ctx, path, match.Line, anchor.Source.Column, selext.Config{
		FastTimeout: r.cfg.Extract.FastTimeout,
		AttrTimeout: r.cfg.Extract.AttrTimeout,
		FullTimeout: r.cfg.Extract.FullTimeout,
	})
	if err != nil {
		say("selector extraction failed: %v", err)
		return nil
	}
	if extraction == nil || len(extraction.Selectors) == 0 {
		say("no selector candidates derivable from source")
		return nil
	}
	*reasons = append(*reasons, extraction.Reasons...)

	var candidates []stability.Candidate
	if req.Probe == nil {
		say("no probe supplied, scoring candidates unverified")
		for _, sel := range extraction.Selectors {
			candidates = append(candidates, stability.Candidate{
				Selector: sel,
				Score:    stability.ScoreStability(sel, anchor.Hint, true, nil),
			})
		}
	} else {
		results := probe.CheckAll(ctx, req.Probe, extraction.Selectors, probe.Options{
			URL:     req.URL,
			Timeout: r.cfg.Probe.Timeout,
		})
		for i := range results {
			if !results[i].Live() {
				continue
			}
			candidates = append(candidates, stability.Candidate{
				Selector: results[i].Selector,
				Score:    stability.ScoreStability(results[i].Selector, anchor.Hint, true, &results[i]),
			})
		}
		say("%d of %d candidates are live", len(candidates), len(results))
	}

	winner := stability.PickMostStable(candidates)
	if winner == nil {
		say("no live candidate survived scoring")
	}
	return winner
}

// writeBack clones the store with the winning selector recorded on the
// anchor, then either hands the clone to the caller's Persister or
// attaches it for pull-based persistence. Hook failure downgrades to the
// attached-store path rather than failing the resolution.
func (r *Resolver) writeBack(ctx context.Context, req Request, store *anchors.Store, anchorID string, winner *stability.Candidate, res *Resolution) {
	now := time.Now().UTC()
	updated := store.Clone()
	for i := range updated.Anchors {
		if updated.Anchors[i].ID != anchorID {
			continue
		}
		updated.Anchors[i].LastKnown = &anchors.LastKnown{
			Selector:       winner.Selector,
			StabilityScore: int(winner.Score.Overall*100 + 0.5),
			Timestamp:      now,
		}
		updated.Anchors[i].LastSeen = &now
		break
	}

	if req.Persist != nil {
		if err := req.Persist.Persist(ctx, updated); err != nil {
			res.Reasons = append(res.Reasons, fmt.Sprintf("write-back hook failed, attached updated store instead: %v", err))
			res.UpdatedStore = updated
			return
		}
		res.Reasons = append(res.Reasons, "write-back persisted")
		return
	}
	res.Reasons = append(res.Reasons, "updated store attached for caller persistence")
	res.UpdatedStore = updated
}

// record mirrors the outcome into the audit sink, best effort.
func (r *Resolver) record(ctx context.Context, req Request, res Resolution) {
	if r.sink == nil {
		return
	}
	score := 0
	if res.Stability != nil {
		score = int(res.Stability.Overall*100 + 0.5)
	}
	e := history.Entry{
		URL:      req.URL,
		Hint:     req.InitialSelector,
		AnchorID: res.AnchorID,
		Selector: res.Selector,
		Score:    score,
		Reasons:  res.Reasons,
	}
	if err := r.sink.Record(ctx, e); err != nil {
		r.logger.Warn("resolve: history sink failed", "error", err)
	}
}
