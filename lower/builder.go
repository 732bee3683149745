package lower

import (
	"fmt"

	. "github.com/gomlx/gomlx/pkg/core/graph" //nolint

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/nnir-gomlx/nnir"
	"github.com/gomlx/nnir-gomlx/ops"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// builderState tracks one build's progress. Transitions are strictly
// Uninitialized -> Traversing -> Bound -> Built; a finished builder refuses
// to start over.
type builderState int

const (
	stateUninitialized builderState = iota
	stateTraversing
	stateBound
	stateBuilt
)

// Builder lowers one host network into a Program. It owns the tensor registry
// and the I/O binding table for the duration of exactly one Build call: create
// a new Builder per network.
//
// The operator registry is injected at construction; the Builder holds no
// global state.
type Builder struct {
	backend  backends.Backend
	registry *ops.Registry
	state    builderState

	net     *nnir.Network
	g       *Graph
	tensors *tensorTable

	// Host-declared I/O metadata, cached on entry to traversal.
	inputSpecs  map[string]nnir.IOSpec
	outputSpecs map[string]nnir.IOSpec

	// I/O binding tables: host-declared name -> bound handle. Input bindings
	// hold the unconverted placeholder (the program's external dtype must
	// match what the host declared, not the graph's internal type).
	boundInputs  map[string]*Node
	boundOutputs map[string]*Node
}

// NewBuilder returns a Builder that lowers onto a graph for the given backend,
// resolving operator kind names through registry.
func NewBuilder(backend backends.Backend, registry *ops.Registry) *Builder {
	return &Builder{backend: backend, registry: registry}
}

// Build lowers net into an immutable Program with the host's declared inputs
// and outputs bound by name, in the host's declared order.
//
// It either returns a complete program or a typed error (see ErrorKind); there
// is no partial-success mode. The Builder must not be reused afterward.
func Build(backend backends.Backend, registry *ops.Registry, net *nnir.Network) (*Program, error) {
	return NewBuilder(backend, registry).Build(net)
}

// Build lowers net. See the package-level Build.
func (b *Builder) Build(net *nnir.Network) (program *Program, err error) {
	err = exceptions.TryCatch[error](func() { program = b.build(net) })
	if err != nil {
		return nil, errors.WithMessagef(err, "lowering network %q", netName(net))
	}
	return program, nil
}

func netName(net *nnir.Network) string {
	if net == nil {
		return "<nil>"
	}
	return net.Name
}

func (b *Builder) build(net *nnir.Network) *Program {
	if b.state != stateUninitialized {
		exceptions.Panicf("Builder is not reusable: it already ran a build")
	}
	if net == nil || net.Graph == nil {
		raisef(MissingGraphRepresentation, "", "host network does not carry an operation graph")
	}

	b.net = net
	b.g = NewGraph(b.backend, net.Name)
	b.tensors = newTensorTable()
	b.inputSpecs = make(map[string]nnir.IOSpec, len(net.Inputs))
	for _, spec := range net.Inputs {
		b.inputSpecs[spec.Name] = spec
	}
	b.outputSpecs = make(map[string]nnir.IOSpec, len(net.Outputs))
	for _, spec := range net.Outputs {
		b.outputSpecs[spec.Name] = spec
	}
	b.boundInputs = make(map[string]*Node, len(net.Inputs))
	b.boundOutputs = make(map[string]*Node, len(net.Outputs))

	// Traversing: dispatch nodes one at a time, strictly in the supplied
	// topological order -- the single ordering guarantee the engine relies on.
	b.state = stateTraversing
	for ii, node := range net.Graph.Nodes {
		klog.V(2).Infof("lowering node %d/%d: %s", ii+1, len(net.Graph.Nodes), node)
		err := exceptions.TryCatch[error](func() { b.lowerNode(node) })
		if err != nil {
			panic(errors.WithMessagef(err, "while lowering node %d out of %d", ii, len(net.Graph.Nodes)))
		}
	}

	// Bound: resolve the host's declared I/O names through the binding
	// tables, in the host's declared order.
	b.state = stateBound
	inputs := make([]*Node, len(net.Inputs))
	inputNames := make([]string, len(net.Inputs))
	for ii, spec := range net.Inputs {
		handle, found := b.boundInputs[spec.Name]
		if !found {
			raisef(UnboundIO, "", "network declares input %q but the graph never bound it", spec.Name)
		}
		inputs[ii] = handle
		inputNames[ii] = spec.Name
	}
	outputs := make([]*Node, len(net.Outputs))
	outputNames := make([]string, len(net.Outputs))
	for ii, spec := range net.Outputs {
		handle, found := b.boundOutputs[spec.Name]
		if !found {
			raisef(UnboundIO, "", "network declares output %q but the graph never bound it", spec.Name)
		}
		outputs[ii] = handle
		outputNames[ii] = spec.Name
	}

	b.state = stateBuilt
	klog.V(1).Infof("lowered network %q: %d nodes, %d inputs, %d outputs",
		net.Name, len(net.Graph.Nodes), len(inputs), len(outputs))
	return &Program{
		name:        net.Name,
		g:           b.g,
		inputs:      inputs,
		outputs:     outputs,
		inputNames:  inputNames,
		outputNames: outputNames,
	}
}

// lowerNode dispatches one node to its translator by kind tag.
func (b *Builder) lowerNode(node *nnir.Node) {
	switch node.Kind {
	case nnir.KindLiteral:
		b.lowerLiteral(node)
	case nnir.KindInput:
		b.lowerInput(node)
	case nnir.KindOperator:
		b.lowerOperator(node)
	case nnir.KindOutput:
		b.lowerOutput(node)
	default:
		exceptions.Panicf("node %q has unknown kind %v", node.Name, node.Kind)
	}
}

// lowerLiteral translates a constant node: it builds a tensor of the declared
// type/shape, copies the embedded bytes bit-for-bit, and registers the handle
// under the node's single output slot with its published layout.
func (b *Builder) lowerLiteral(node *nnir.Node) {
	if node.NumOutputs != 1 {
		exceptions.Panicf("literal node %q declares %d outputs, literals produce exactly one", node.Name, node.NumOutputs)
	}
	dtype, err := dtypeOf(node.Type)
	if err != nil {
		panic(errors.WithMessagef(err, "literal node %q", node.Name))
	}
	shape := shapes.Make(dtype, node.Dims...)
	if uintptr(len(node.Data)) != shape.Memory() {
		raisef(ShapeMismatch, node.Name, "literal carries %d bytes but shape %s requires %d bytes",
			len(node.Data), shape, shape.Memory())
	}
	tensor := tensors.FromShape(shape)
	err = tensor.MutableBytes(func(data []byte) {
		copy(data, node.Data)
	})
	if err != nil {
		panic(errors.WithMessagef(err, "copying literal node %q into its tensor", node.Name))
	}
	handle := ConstTensor(b.g, tensor)
	b.tensors.register(tensorKey{node.Name, 0}, handle, node.Layout)
}

// lowerInput translates a placeholder node. The placeholder is created at the
// host-declared type/shape; when the graph declares a different internal type,
// an explicit conversion is inserted for downstream consumers while the
// original, unconverted placeholder is what gets bound as the program's
// external input.
func (b *Builder) lowerInput(node *nnir.Node) {
	if node.NumOutputs != 1 {
		exceptions.Panicf("input node %q declares %d outputs, inputs produce exactly one", node.Name, node.NumOutputs)
	}
	spec, found := b.inputSpecs[node.Alias]
	if !found {
		raisef(UnboundIO, node.Name, "graph input %q is not declared by the host network", node.Alias)
	}
	hostDType, err := dtypeOf(spec.Type)
	if err != nil {
		panic(errors.WithMessagef(err, "input node %q", node.Name))
	}
	placeholder := Parameter(b.g, spec.Name, shapes.Make(hostDType, spec.Dims...))

	handle := placeholder
	if node.Type != nnir.InvalidType && node.Type != spec.Type {
		graphDType, err := dtypeOf(node.Type)
		if err != nil {
			panic(errors.WithMessagef(err, "input node %q", node.Name))
		}
		handle = ConvertDType(placeholder, graphDType)
	}
	b.tensors.register(tensorKey{node.Name, 0}, handle, spec.Layout)
	b.boundInputs[spec.Name] = placeholder
}

// lowerOperator translates a regular operation: it resolves the builder for
// the node's kind name, resolves and layout-negotiates every operand, extracts
// the attribute dictionary, and invokes the builder inside a named alias scope
// so the emitted sub-graph is traceable back to the operator kind and node
// identity.
func (b *Builder) lowerOperator(node *nnir.Node) {
	op, found := b.registry.Resolve(node.OpType)
	if !found {
		raisef(UnsupportedOperator, node.Name, "unsupported operation %q", node.OpType)
	}

	operands := make([]*Node, len(node.Inputs))
	for ii, edge := range node.Inputs {
		operands[ii] = b.resolveOperand(node, edge, op.OperandLayout(ii))
	}
	attrs := extractAttributes(node)

	b.g.PushAliasScope(fmt.Sprintf("ir.%s:%s", node.OpType, node.Name))
	outputs := op.Build(&ops.Context{
		Graph:    b.g,
		NodeName: node.Name,
		OpType:   node.OpType,
		Operands: operands,
		Attrs:    attrs,
	})
	b.g.PopAliasScope()

	for ii, output := range outputs {
		if output == nil || output.Graph() != b.g {
			raisef(BuilderContractViolation, node.Name,
				"operator %q returned output #%d that is not a tensor of the program graph", node.OpType, ii)
		}
	}
	if len(outputs) != node.NumOutputs {
		raisef(OutputArityMismatch, node.Name, "operator %q returned %d outputs, the node declares %d",
			node.OpType, len(outputs), node.NumOutputs)
	}
	for ii, output := range outputs {
		b.tensors.register(tensorKey{node.Name, ii}, output, op.ResultLayout(ii))
	}
}

// resolveOperand resolves the producer's handle for edge through the tensor
// registry and reconciles its layout with the one the consumer declared: if
// producer and consumer disagree, it inserts an axis permutation and installs
// a registry redirection so later consumers of the same slot reuse the
// converted handle.
func (b *Builder) resolveOperand(consumer *nnir.Node, edge nnir.Edge, want nnir.Layout) *Node {
	if edge.Producer == nil {
		exceptions.Panicf("node %q has an edge with no producer", consumer.Name)
	}
	key := tensorKey{edge.Producer.Name, edge.Slot}
	entry := b.tensors.resolve(key)
	if want == nnir.LayoutAny || entry.layout == nnir.LayoutAny || entry.layout == want {
		return entry.handle
	}
	if entry.handle.Rank() != want.Rank() {
		raisef(ShapeMismatch, edge.Producer.Name,
			"tensor of rank %d cannot satisfy layout %q required by %q", entry.handle.Rank(), want, consumer.Name)
	}
	perm, err := nnir.Permutation(entry.layout, want)
	if err != nil {
		raisef(ShapeMismatch, edge.Producer.Name,
			"cannot reconcile published layout %q with layout %q required by %q: %v",
			entry.layout, want, consumer.Name, err)
	}
	converted := TransposeAllAxes(entry.handle, perm...)
	b.tensors.redirect(key, converted, want)
	return converted
}

// lowerOutput binds a result node: the external name derives from the
// producer's alias, disambiguated with the consumed slot index when the
// producer has more than one output. A conversion is inserted when the
// produced element type (or layout) differs from what the host declared.
func (b *Builder) lowerOutput(node *nnir.Node) {
	if len(node.Inputs) != 1 {
		exceptions.Panicf("output node %q must consume exactly one edge, it has %d", node.Name, len(node.Inputs))
	}
	edge := node.Inputs[0]
	if edge.Producer == nil {
		exceptions.Panicf("output node %q has an edge with no producer", node.Name)
	}
	name := edge.Producer.Alias
	if edge.Producer.NumOutputs > 1 {
		name = fmt.Sprintf("%s.%d", name, edge.Slot)
	}
	spec, found := b.outputSpecs[name]
	if !found {
		raisef(UnboundIO, node.Name, "graph output %q is not declared by the host network", name)
	}

	entry := b.tensors.resolve(tensorKey{edge.Producer.Name, edge.Slot})
	handle := entry.handle
	if spec.Layout != nnir.LayoutAny && entry.layout != nnir.LayoutAny && spec.Layout != entry.layout {
		perm, err := nnir.Permutation(entry.layout, spec.Layout)
		if err != nil {
			raisef(ShapeMismatch, node.Name,
				"cannot reconcile produced layout %q with declared output layout %q: %v",
				entry.layout, spec.Layout, err)
		}
		handle = TransposeAllAxes(handle, perm...)
	}
	wantDType, err := dtypeOf(spec.Type)
	if err != nil {
		panic(errors.WithMessagef(err, "output %q", name))
	}
	if handle.DType() != wantDType {
		handle = ConvertDType(handle, wantDType)
	}
	b.boundOutputs[name] = handle
}
