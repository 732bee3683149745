// Package ops holds the operator registry the lowering engine dispatches
// through: a mapping from operator kind names to builder functions that emit
// the corresponding GoMLX sub-graph.
//
// The registry is an explicit object handed to the engine at construction;
// there is no process-global registration state. StandardRegistry returns a
// registry pre-populated with the stock operator set.
package ops

import (
	. "github.com/gomlx/gomlx/pkg/core/graph" //nolint

	"github.com/gomlx/exceptions"
	"github.com/gomlx/nnir-gomlx/nnir"
)

// Context carries everything a builder may use: the graph being built, the
// identity of the node being lowered (for diagnostics), its resolved operand
// handles in declared order, and its attribute dictionary.
type Context struct {
	Graph    *Graph
	NodeName string
	OpType   string
	Operands []*Node
	Attrs    Attributes
}

// BuilderFn lowers one operator node. It is pure: it reads the context and
// returns the node's output handles, one per declared output, in slot order.
type BuilderFn func(ctx *Context) []*Node

// Op is one registered operator: its kind name, its builder, and its layout
// contract. Operands declares the layout each operand must arrive in; Results
// publishes the layout of each output. Missing or empty entries mean
// unconstrained -- the engine inserts axis permutations only where a
// producer's published layout and a declared operand layout disagree.
type Op struct {
	Type     string
	Build    BuilderFn
	Operands []nnir.Layout
	Results  []nnir.Layout
}

// OperandLayout returns the declared layout for operand i, or nnir.LayoutAny
// when the op declares none.
func (op *Op) OperandLayout(i int) nnir.Layout {
	if i < len(op.Operands) {
		return op.Operands[i]
	}
	return nnir.LayoutAny
}

// ResultLayout returns the published layout for output i, or nnir.LayoutAny
// when the op publishes none.
func (op *Op) ResultLayout(i int) nnir.Layout {
	if i < len(op.Results) {
		return op.Results[i]
	}
	return nnir.LayoutAny
}

// Registry maps operator kind names to their Op. One Registry instance is
// owned by whoever constructs the engine; it is not safe for concurrent
// mutation, and should be fully populated before the first build.
type Registry struct {
	byType map[string]*Op
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]*Op)}
}

// Register adds op under op.Type. Registering the same kind name twice is a
// programming error and panics.
func (r *Registry) Register(op *Op) {
	if op.Type == "" {
		exceptions.Panicf("ops.Register: operator has empty kind name")
	}
	if _, found := r.byType[op.Type]; found {
		exceptions.Panicf("ops.Register: operator %q registered twice", op.Type)
	}
	r.byType[op.Type] = op
}

// Func registers a plain builder with no layout contract under the given kind name.
func (r *Registry) Func(opType string, build BuilderFn) {
	r.Register(&Op{Type: opType, Build: build})
}

// Resolve returns the Op registered under the given kind name, if any.
func (r *Registry) Resolve(opType string) (*Op, bool) {
	op, found := r.byType[opType]
	return op, found
}

// Types returns the registered kind names, unordered.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	return types
}
