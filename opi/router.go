package opi

import "github.com/brc20x/indexer/chainerr"

// Router is a pure function over a Registry: it does not know protocol
// semantics, only how to turn an op-tag into a processor handle (spec.md
// §4.4). All state interaction happens inside the processor it returns.
type Router struct {
	registry *Registry
}

// NewRouter binds a Router to a fully-populated Registry.
func NewRouter(registry *Registry) *Router {
	return &Router{registry: registry}
}

// Route resolves opTag to its processor. An unknown tag is reported as
// UnknownOp, the structural error the caller logs as an invalid operation.
func (r *Router) Route(opTag string) (Processor, *chainerr.Error) {
	p, ok := r.registry.Lookup(opTag)
	if !ok {
		return nil, chainerr.New(chainerr.UnknownOp, "no processor registered for op %q", opTag)
	}
	return p, nil
}
