// CLAUDE:SUMMARY Service wrapper around the resolver: shared probe, anchors-file persistence, history queries.
package resolve

import (
	"context"
	"fmt"

	"github.com/mooragehq/moorage/anchors"
	"github.com/mooragehq/moorage/history"
	"github.com/mooragehq/moorage/probe"
)

// Service exposes the resolver over HTTP and MCP with a process-wide
// probe and optional history store.
type Service struct {
	resolver *Resolver
	probe    probe.Probe
	hist     *history.Store
}

// NewService wires a Service. p may be nil (candidates are then scored
// unverified); hist may be nil (no audit queries).
func NewService(resolver *Resolver, p probe.Probe, hist *history.Store) *Service {
	return &Service{resolver: resolver, probe: p, hist: hist}
}

// resolveRequest is the wire shape shared by the HTTP and MCP surfaces.
type resolveRequest struct {
	URL             string `json:"url"`
	InitialSelector string `json:"initialSelector"`
	AnchorsPath     string `json:"anchorsPath,omitempty"`
	WriteBack       bool   `json:"writeBack,omitempty"`
}

// resolveResponse is the wire shape of a Resolution.
type resolveResponse struct {
	Selector       string   `json:"selector"`
	Subselector    string   `json:"subselector,omitempty"`
	AnchorID       string   `json:"anchorId,omitempty"`
	StabilityScore *float64 `json:"stabilityScore,omitempty"`
	Details        []string `json:"details,omitempty"`
	Reasons        []string `json:"reasons,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// doResolve runs one request. Write-back persists to the anchors file
// itself: the service is its own host, so the effectful strategy is the
// right default here.
func (s *Service) doResolve(ctx context.Context, req resolveRequest) resolveResponse {
	r := Request{
		URL:             req.URL,
		InitialSelector: req.InitialSelector,
		AnchorsPath:     req.AnchorsPath,
		WriteBack:       req.WriteBack,
		Probe:           s.probe,
	}
	if req.WriteBack && req.AnchorsPath != "" {
		r.Persist = fileSaver{path: req.AnchorsPath}
	}

	res := s.resolver.Resolve(ctx, r)

	out := resolveResponse{
		Selector:    res.Selector,
		Subselector: res.Subselector,
		AnchorID:    res.AnchorID,
		Reasons:     res.Reasons,
	}
	if res.Stability != nil {
		out.StabilityScore = &res.Stability.Overall
		out.Details = res.Stability.Details
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

// fileSaver persists an updated store back to its own file.
type fileSaver struct {
	path string
}

func (f fileSaver) Persist(_ context.Context, store *anchors.Store) error {
	if err := anchors.Save(f.path, store); err != nil {
		return fmt.Errorf("persist anchors: %w", err)
	}
	return nil
}

var _ Persister = fileSaver{}
var _ Sink = (*history.Store)(nil)
