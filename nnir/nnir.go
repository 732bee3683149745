// Package nnir defines the host network intermediate representation consumed by
// the lowering engine in the lower package.
//
// A Network is an immutable snapshot of a computation graph produced by an
// external loader: typed tensor operations (Node) connected by typed tensor
// values (Edge), plus the host's declared external inputs and outputs (IOSpec).
// The graph's node list must be topologically sorted -- the lowering engine
// relies on that ordering and does not re-derive it.
//
// Nothing in this package mutates a Network; the types here are a passive
// schema shared between loaders and the engine.
package nnir

import "fmt"

// NodeKind tags the role of a Node in the graph.
type NodeKind int

const (
	// KindLiteral is a constant node carrying an embedded byte buffer.
	KindLiteral NodeKind = iota
	// KindInput is a placeholder for one of the network's external inputs.
	KindInput
	// KindOperator is a regular operation, resolved through an ops.Registry.
	KindOperator
	// KindOutput marks one of the network's external outputs.
	KindOutput
)

// String implements fmt.Stringer.
func (k NodeKind) String() string {
	switch k {
	case KindLiteral:
		return "Literal"
	case KindInput:
		return "Input"
	case KindOperator:
		return "Operator"
	case KindOutput:
		return "Output"
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// ElementType is the host's element type vocabulary.
// It is mapped to the target representation's dtype by the lowering engine.
type ElementType int

const (
	InvalidType ElementType = iota
	Bool
	Float16
	BFloat16
	Float32
	Float64
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
)

// String implements fmt.Stringer.
func (t ElementType) String() string {
	switch t {
	case Bool:
		return "Bool"
	case Float16:
		return "Float16"
	case BFloat16:
		return "BFloat16"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case Int8:
		return "Int8"
	case Int16:
		return "Int16"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case Uint8:
		return "Uint8"
	case Uint16:
		return "Uint16"
	case Uint32:
		return "Uint32"
	case Uint64:
		return "Uint64"
	}
	return fmt.Sprintf("ElementType(%d)", int(t))
}

// Edge references a specific output slot of a producer node.
type Edge struct {
	Producer *Node
	Slot     int
}

// String implements fmt.Stringer.
func (e Edge) String() string {
	if e.Producer == nil {
		return fmt.Sprintf("<nil>:%d", e.Slot)
	}
	return fmt.Sprintf("%s:%d", e.Producer.Name, e.Slot)
}

// Node is one operation of the host graph. It is read-only for the engine.
//
// Name is the unique identity used to key intermediate results; Alias is the
// human-readable ("friendly") name the host uses for its external interface.
type Node struct {
	Name  string
	Alias string
	Kind  NodeKind

	// OpType is the operator kind name, set for KindOperator nodes.
	OpType string

	// Inputs are the edges feeding this node, in operand order.
	Inputs []Edge

	// NumOutputs is the node's declared output arity.
	NumOutputs int

	// Attrs is the node's kind-specific attribute set.
	Attrs []Attribute

	// Type and Dims describe the value of Literal nodes and the
	// graph-declared type of Input nodes. For Input nodes the host-declared
	// type/shape in the Network's IOSpec takes precedence for the external
	// interface; a differing Type here requests an internal conversion.
	Type ElementType
	Dims []int

	// Data is the embedded literal payload of Literal nodes, in the target
	// representation's native byte order, Dims-row-major.
	Data []byte

	// Layout is the native dimension order published for the value produced
	// by Literal and Input nodes. Empty means unconstrained.
	Layout Layout
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	if n.Kind == KindOperator {
		return fmt.Sprintf("%s[%s](%q)", n.Kind, n.OpType, n.Name)
	}
	return fmt.Sprintf("%s(%q)", n.Kind, n.Name)
}

// IOSpec is the host's declaration of one external input or output: its name,
// element type, shape and native layout.
type IOSpec struct {
	Name   string
	Type   ElementType
	Dims   []int
	Layout Layout
}

// Graph holds the network's nodes in topological order: every edge's producer
// appears before its consumers.
type Graph struct {
	Nodes []*Node
}

// Network is the host network handed to the lowering engine: the operation
// graph plus the ordered, named declarations of its external inputs and
// outputs. The order of Inputs and Outputs is the order of the final program's
// external interface.
type Network struct {
	Name    string
	Graph   *Graph
	Inputs  []IOSpec
	Outputs []IOSpec
}
