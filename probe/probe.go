// CLAUDE:SUMMARY Liveness probe contract plus the two check modes: fail-fast priority iteration and fail-soft concurrent aggregation.
// Package probe defines the liveness-probing contract the resolver
// consumes. The probing mechanism itself — a browser automation layer —
// lives out of process; this package only shapes the calls.
package probe

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Result is one liveness answer. IsValid (attached to the document) and
// IsAlive (visible) are deliberately distinct axes; both may be true.
type Result struct {
	Selector  string        `json:"selector"`
	IsValid   bool          `json:"isValid"`
	IsAlive   bool          `json:"isAlive"`
	CheckTime time.Duration `json:"checkTime"`
	Error     string        `json:"error,omitempty"`
}

// Live reports whether the selector passed on either axis.
func (r Result) Live() bool { return r.IsAlive || r.IsValid }

// Options bounds a single probe call.
type Options struct {
	URL     string
	Timeout time.Duration
}

// Probe checks one selector against a live rendering.
type Probe interface {
	Check(ctx context.Context, selector string, opts Options) (Result, error)
}

// CheckPriority probes selectors in order and returns the first live
// result, or nil when none pass. A probe error propagates immediately:
// priority mode is a fail-fast iterator, unlike CheckAll.
func CheckPriority(ctx context.Context, p Probe, selectors []string, opts Options) (*Result, error) {
	for _, sel := range selectors {
		res, err := p.Check(ctx, sel, opts)
		if err != nil {
			return nil, err
		}
		if res.Live() {
			return &res, nil
		}
	}
	return nil, nil
}

// CheckAll probes every selector concurrently and returns results in
// input order. Individual probe errors are folded into failed Results so
// the batch itself never fails: a fail-soft aggregator.
func CheckAll(ctx context.Context, p Probe, selectors []string, opts Options) []Result {
	results := make([]Result, len(selectors))
	var wg sync.WaitGroup
	for i, sel := range selectors {
		wg.Add(1)
		go func(i int, sel string) {
			defer wg.Done()
			// A panicking probe must not take the process down; in this
			// mode it is just one more failed result.
			defer func() {
				if r := recover(); r != nil {
					results[i] = Result{Selector: sel, Error: fmt.Sprintf("probe panicked: %v", r)}
				}
			}()
			res, err := p.Check(ctx, sel, opts)
			if err != nil {
				results[i] = Result{Selector: sel, Error: err.Error()}
				return
			}
			res.Selector = sel
			results[i] = res
		}(i, sel)
	}
	wg.Wait()
	return results
}
