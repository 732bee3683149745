package lower

import (
	. "github.com/gomlx/gomlx/pkg/core/graph" //nolint

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// Program is the immutable result of one build: the target-representation
// graph plus its ordered external inputs and outputs, bound by name to the
// host's declared I/O. Ordering follows the host's declarations, not the
// traversal order.
type Program struct {
	name        string
	g           *Graph
	inputs      []*Node
	outputs     []*Node
	inputNames  []string
	outputNames []string

	compiled bool
}

// Name returns the host network's name.
func (p *Program) Name() string { return p.name }

// Graph returns the underlying target graph.
func (p *Program) Graph() *Graph { return p.g }

// Inputs returns the program's external input handles, in the host's declared order.
func (p *Program) Inputs() []*Node { return p.inputs }

// Outputs returns the program's external output handles, in the host's declared order.
func (p *Program) Outputs() []*Node { return p.outputs }

// InputNames returns the host-declared input names, aligned with Inputs.
func (p *Program) InputNames() []string { return p.inputNames }

// OutputNames returns the host-declared output names, aligned with Outputs.
func (p *Program) OutputNames() []string { return p.outputNames }

// Compile compiles the program for its backend. It is called automatically by
// the first Run; calling it eagerly just surfaces compilation errors earlier.
func (p *Program) Compile() error {
	if p.compiled {
		return nil
	}
	err := exceptions.TryCatch[error](func() { p.g.Compile(p.outputs...) })
	if err != nil {
		return errors.WithMessagef(err, "compiling program %q", p.name)
	}
	p.compiled = true
	return nil
}

// Run executes the program with the given input values, one per declared
// input, in declared order. It returns one tensor per declared output.
func (p *Program) Run(inputs ...any) ([]*tensors.Tensor, error) {
	if err := p.Compile(); err != nil {
		return nil, err
	}
	var outputs []*tensors.Tensor
	err := exceptions.TryCatch[error](func() { outputs = p.g.Run(inputs...) })
	if err != nil {
		return nil, errors.WithMessagef(err, "running program %q", p.name)
	}
	return outputs, nil
}

// Finalize immediately frees the resources associated with the program's graph.
func (p *Program) Finalize() {
	p.g.Finalize()
}
