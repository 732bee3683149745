package lower

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a build failure. Every failure raised by the engine
// carries exactly one kind; kinds are never retried -- lowering is
// deterministic, so retrying an unchanged network cannot succeed.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota

	// MissingGraphRepresentation: the host network lacks the expected graph form.
	MissingGraphRepresentation
	// UnsupportedOperator: no builder is registered for the node's kind name.
	UnsupportedOperator
	// UnsupportedAttributeKind: an attribute has no translatable value.
	UnsupportedAttributeKind
	// ShapeMismatch: a literal buffer or layout disagrees with its declared shape.
	ShapeMismatch
	// DependencyNotFound: a consumer edge references a producer slot that was
	// never registered -- an upstream translation bug or a malformed graph.
	DependencyNotFound
	// OutputArityMismatch: a builder returned a different number of outputs
	// than the node declares.
	OutputArityMismatch
	// BuilderContractViolation: a builder returned something that is not a
	// usable tensor handle.
	BuilderContractViolation
	// UnboundIO: a declared network input or output was never bound.
	UnboundIO
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case MissingGraphRepresentation:
		return "MissingGraphRepresentation"
	case UnsupportedOperator:
		return "UnsupportedOperator"
	case UnsupportedAttributeKind:
		return "UnsupportedAttributeKind"
	case ShapeMismatch:
		return "ShapeMismatch"
	case DependencyNotFound:
		return "DependencyNotFound"
	case OutputArityMismatch:
		return "OutputArityMismatch"
	case BuilderContractViolation:
		return "BuilderContractViolation"
	case UnboundIO:
		return "UnboundIO"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a typed build failure: its kind, the identity of the offending
// node (empty when the failure is not tied to one node), and a message.
type Error struct {
	Kind ErrorKind
	Node string
	msg  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.msg)
	}
	return fmt.Sprintf("%s: %s (node %q)", e.Kind, e.msg, e.Node)
}

// KindOf extracts the ErrorKind from err or any error it wraps. It returns
// KindUnknown for errors not raised by this package.
func KindOf(err error) ErrorKind {
	var buildErr *Error
	if errors.As(err, &buildErr) {
		return buildErr.Kind
	}
	return KindUnknown
}

// raisef aborts the build with a typed error; Builder.Build recovers it at
// the API boundary.
func raisef(kind ErrorKind, node string, format string, args ...any) {
	panic(&Error{Kind: kind, Node: node, msg: fmt.Sprintf(format, args...)})
}
