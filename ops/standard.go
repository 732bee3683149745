package ops

import (
	"slices"

	. "github.com/gomlx/gomlx/pkg/core/graph" //nolint
	timage "github.com/gomlx/gomlx/pkg/core/tensors/images"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/nnir-gomlx/nnir"
)

// This file implements the stock operator set. Builders are written against
// the host's operator vocabulary (OpenVINO opset naming); each emits the
// corresponding GoMLX sub-graph from its operands and attribute dictionary.

// StandardRegistry returns a registry populated with the stock operator set.
// Callers may Register additional operators on the returned registry before
// handing it to the engine.
func StandardRegistry() *Registry {
	r := NewRegistry()

	r.Func("Identity", func(ctx *Context) []*Node {
		return []*Node{operand(ctx, 0)}
	})

	registerBinaryOps(r)
	registerUnaryOps(r)

	r.Func("MatMul", buildMatMul)
	r.Register(&Op{
		Type:     "Convolution",
		Build:    buildConvolution,
		Operands: []nnir.Layout{nnir.LayoutNHWC, nnir.LayoutHWIO},
		Results:  []nnir.Layout{nnir.LayoutNHWC},
	})
	r.Func("ReduceMean", buildReduceMean)
	r.Func("Reshape", buildReshape)
	r.Func("Transpose", buildTranspose)
	r.Func("Softmax", buildSoftmax)
	r.Func("Concat", buildConcat)
	r.Func("Clamp", buildClamp)
	r.Func("Split", buildSplit)
	return r
}

// operand returns the i-th operand, panicking with the node identity when the
// host graph wired fewer operands than the builder needs.
func operand(ctx *Context, i int) *Node {
	if i >= len(ctx.Operands) {
		exceptions.Panicf("operator %s (node %q) requires operand #%d, got only %d operands",
			ctx.OpType, ctx.NodeName, i, len(ctx.Operands))
	}
	return ctx.Operands[i]
}

// binaryOp is a GoMLX binary op, wrapped by implicitBroadcast.
type binaryOp func(lhs, rhs *Node) *Node

// implicitBroadcast expands operands to the largest rank, expanding to the
// left. Scalars are left untouched, the backend broadcasts them natively.
func implicitBroadcast(operands []*Node) []*Node {
	ranks := sliceMap(operands, func(n *Node) int { return n.Rank() })
	maxRank := slices.Max(ranks)
	return sliceMap(operands, func(n *Node) *Node {
		if n.IsScalar() || n.Rank() == maxRank {
			return n
		}
		return ExpandLeftToRank(n, maxRank)
	})
}

func binary(fn binaryOp) BuilderFn {
	return func(ctx *Context) []*Node {
		operands := implicitBroadcast([]*Node{operand(ctx, 0), operand(ctx, 1)})
		return []*Node{fn(operands[0], operands[1])}
	}
}

func unary(fn func(x *Node) *Node) BuilderFn {
	return func(ctx *Context) []*Node {
		return []*Node{fn(operand(ctx, 0))}
	}
}

func registerBinaryOps(r *Registry) {
	r.Func("Add", binary(Add))
	r.Func("Subtract", binary(Sub))
	r.Func("Multiply", binary(Mul))
	r.Func("Divide", binary(Div))
	r.Func("Power", binary(Pow))
	r.Func("Maximum", binary(Max))
	r.Func("Minimum", binary(Min))
	r.Func("Equal", binary(Equal))
}

func registerUnaryOps(r *Registry) {
	r.Func("Relu", unary(func(x *Node) *Node { return Max(x, ZerosLike(x)) }))
	r.Func("Sigmoid", unary(Sigmoid))
	r.Func("Tanh", unary(Tanh))
	r.Func("Sqrt", unary(Sqrt))
	r.Func("Exp", unary(Exp))
	r.Func("Log", unary(Log))
	r.Func("Erf", unary(Erf))
	r.Func("Abs", unary(Abs))
	r.Func("Negative", unary(Neg))
}

// buildMatMul multiplies its two operands, honoring the host's transpose_a and
// transpose_b attributes on the two contracted axes.
func buildMatMul(ctx *Context) []*Node {
	lhs, rhs := operand(ctx, 0), operand(ctx, 1)
	if ctx.Attrs.BoolOr("transpose_a", false) {
		lhs = Transpose(lhs, lhs.Rank()-2, lhs.Rank()-1)
	}
	if ctx.Attrs.BoolOr("transpose_b", false) {
		rhs = Transpose(rhs, rhs.Rank()-2, rhs.Rank()-1)
	}
	return []*Node{MatMul(lhs, rhs)}
}

// buildConvolution emits a 2D convolution. The layout contract declared at
// registration guarantees the input arrives as NHWC and the kernel as HWIO
// (spatial, input channels, output channels), GoMLX's channels-last convention.
func buildConvolution(ctx *Context) []*Node {
	x, kernel := operand(ctx, 0), operand(ctx, 1)
	conv := Convolve(x, kernel).ChannelsAxis(timage.ChannelsLast)

	numSpatial := x.Rank() - 2
	ones := make([]int, numSpatial)
	for i := range ones {
		ones[i] = 1
	}
	conv = conv.StridePerDim(ctx.Attrs.IntsOr("strides", ones)...)
	conv = conv.DilationPerDim(ctx.Attrs.IntsOr("dilations", ones)...)

	padsBegin := ctx.Attrs.IntsOr("pads_begin", nil)
	padsEnd := ctx.Attrs.IntsOr("pads_end", nil)
	if len(padsBegin) != len(padsEnd) {
		exceptions.Panicf("operator %s (node %q): pads_begin has %d entries, pads_end has %d",
			ctx.OpType, ctx.NodeName, len(padsBegin), len(padsEnd))
	}
	if padsBegin != nil {
		paddings := make([][2]int, len(padsBegin))
		for i := range paddings {
			paddings[i] = [2]int{padsBegin[i], padsEnd[i]}
		}
		conv = conv.PaddingPerDim(paddings)
	}
	return []*Node{conv.Done()}
}

// buildReduceMean averages over the axes attribute; keep_dims re-inserts the
// reduced axes with size one.
func buildReduceMean(ctx *Context) []*Node {
	x := operand(ctx, 0)
	axes := sliceMap(ctx.Attrs.Ints("axes"), func(axis int) int { return adjustAxis(x, axis) })
	reduced := ReduceMean(x, axes...)
	if ctx.Attrs.BoolOr("keep_dims", false) {
		dims := slices.Clone(x.Shape().Dimensions)
		for _, axis := range axes {
			dims[axis] = 1
		}
		reduced = Reshape(reduced, dims...)
	}
	return []*Node{reduced}
}

func buildReshape(ctx *Context) []*Node {
	return []*Node{Reshape(operand(ctx, 0), ctx.Attrs.Ints("shape")...)}
}

func buildTranspose(ctx *Context) []*Node {
	return []*Node{TransposeAllAxes(operand(ctx, 0), ctx.Attrs.Ints("perm")...)}
}

func buildSoftmax(ctx *Context) []*Node {
	x := operand(ctx, 0)
	return []*Node{Softmax(x, adjustAxis(x, ctx.Attrs.IntOr("axis", -1)))}
}

func buildConcat(ctx *Context) []*Node {
	if len(ctx.Operands) == 0 {
		exceptions.Panicf("operator %s (node %q) requires at least one operand", ctx.OpType, ctx.NodeName)
	}
	axis := adjustAxis(ctx.Operands[0], ctx.Attrs.Int("axis"))
	return []*Node{Concatenate(ctx.Operands, axis)}
}

func buildClamp(ctx *Context) []*Node {
	x := operand(ctx, 0)
	return []*Node{ClipScalar(x, mustFloat(ctx, "min"), mustFloat(ctx, "max"))}
}

// buildSplit splits the operand into num_splits equal parts along axis. It is
// the stock multi-output operator.
func buildSplit(ctx *Context) []*Node {
	x := operand(ctx, 0)
	return Split(x, adjustAxis(x, ctx.Attrs.Int("axis")), ctx.Attrs.Int("num_splits"))
}

func mustFloat(ctx *Context, name string) float64 {
	v, ok := ctx.Attrs[name]
	if !ok {
		exceptions.Panicf("operator %s (node %q) is missing required attribute %q",
			ctx.OpType, ctx.NodeName, name)
	}
	return v.AsFloat()
}

// adjustAxis normalizes a possibly negative axis attribute against x's rank.
func adjustAxis(x *Node, axis int) int {
	if axis < 0 {
		axis += x.Rank()
	}
	if axis < 0 || axis >= x.Rank() {
		exceptions.Panicf("axis %d out of range for rank %d operand", axis, x.Rank())
	}
	return axis
}
