package lower

import (
	"github.com/gomlx/nnir-gomlx/nnir"
	"github.com/gomlx/nnir-gomlx/ops"
)

// extractAttributes converts a node's heterogeneous typed attribute set into
// the generic, order-insensitive attribute dictionary consumed by its operator
// builder. The dictionary is built fresh per node and discarded after the
// builder returns.
//
// Attributes with no representable value (void) and attributes holding raw
// memory references (opaque) cannot be translated and abort the build with
// UnsupportedAttributeKind, naming the attribute -- they are never silently
// dropped.
func extractAttributes(node *nnir.Node) ops.Attributes {
	attrs := make(ops.Attributes, len(node.Attrs))
	for _, attr := range node.Attrs {
		attrs[attr.Name] = extractValue(node, attr)
	}
	return attrs
}

func extractValue(node *nnir.Node, attr nnir.Attribute) ops.Value {
	switch attr.Kind {
	case nnir.AttrBool:
		return ops.Bool(attr.Bool)
	case nnir.AttrInt:
		return ops.Int(attr.Int)
	case nnir.AttrFloat:
		return ops.Float(attr.Float)
	case nnir.AttrString:
		return ops.String(attr.Str)
	case nnir.AttrStrings:
		return ops.Tuple(sliceMap(attr.Strs, ops.String)...)
	case nnir.AttrFloat32s:
		return ops.Tuple(sliceMap(attr.F32s, func(v float32) ops.Value { return ops.Float(float64(v)) })...)
	case nnir.AttrFloat64s:
		return ops.Tuple(sliceMap(attr.F64s, ops.Float)...)
	case nnir.AttrInt8s:
		return intTuple(attr.I8s)
	case nnir.AttrInt16s:
		return intTuple(attr.I16s)
	case nnir.AttrInt32s:
		return intTuple(attr.I32s)
	case nnir.AttrInt64s:
		return intTuple(attr.I64s)
	case nnir.AttrUint8s:
		return intTuple(attr.U8s)
	case nnir.AttrUint16s:
		return intTuple(attr.U16s)
	case nnir.AttrUint32s:
		return intTuple(attr.U32s)
	case nnir.AttrUint64s:
		return intTuple(attr.U64s)
	case nnir.AttrVoid, nnir.AttrOpaque:
		raisef(UnsupportedAttributeKind, node.Name, "unsupported %s attribute %q", attr.Kind, attr.Name)
	default:
		raisef(UnsupportedAttributeKind, node.Name, "unknown kind %v of attribute %q", attr.Kind, attr.Name)
	}
	return ops.Value{}
}

// intTuple widens a homogeneous integer sequence into a tuple of 64-bit
// integer values.
func intTuple[T int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64](values []T) ops.Value {
	return ops.Tuple(sliceMap(values, func(v T) ops.Value { return ops.Int(int64(v)) })...)
}

// sliceMap executes the given function sequentially for every element on in, and returns a mapped slice.
func sliceMap[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}
