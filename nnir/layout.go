package nnir

import (
	"strings"

	"github.com/pkg/errors"
)

// Layout names the physical dimension order of a tensor as a string of unique
// axis letters, one per dimension, e.g. "NCHW" or "HWIO". Producers publish the
// layout of the values they create; operators declare the layout they require
// per operand. The lowering engine inserts an axis permutation only where the
// two disagree.
//
// The empty layout means "unconstrained": it matches anything and never causes
// a permutation.
type Layout string

const (
	// LayoutAny matches any layout; no conversion is ever inserted for it.
	LayoutAny Layout = ""

	// Activation layouts: batch, channels, spatial.
	LayoutNCHW Layout = "NCHW"
	LayoutNHWC Layout = "NHWC"

	// Convolution kernel layouts: output-channels, input-channels, spatial.
	LayoutOIHW Layout = "OIHW"
	LayoutHWIO Layout = "HWIO"

	// Matrix layouts.
	LayoutOI Layout = "OI"
	LayoutIO Layout = "IO"
)

// Rank returns the number of dimensions the layout describes.
func (l Layout) Rank() int { return len(l) }

// Permutation computes the axis permutation that converts a tensor laid out as
// `from` into one laid out as `to`: result[i] is the axis of `from` that
// becomes axis i of `to` (the convention of graph.TransposeAllAxes).
//
// Both layouts must have the same rank and use the same set of unique axis
// letters; otherwise the two layouts describe different tensors and the
// conversion is meaningless.
func Permutation(from, to Layout) ([]int, error) {
	if from.Rank() != to.Rank() {
		return nil, errors.Errorf("layouts %q and %q have different ranks (%d vs %d)",
			from, to, from.Rank(), to.Rank())
	}
	perm := make([]int, to.Rank())
	seen := make([]bool, from.Rank())
	for i := 0; i < to.Rank(); i++ {
		axis := strings.IndexByte(string(from), to[i])
		if axis < 0 {
			return nil, errors.Errorf("layout %q has no %q axis required by layout %q", from, string(to[i]), to)
		}
		if seen[axis] {
			return nil, errors.Errorf("layout %q repeats axis %q", to, string(to[i]))
		}
		seen[axis] = true
		perm[i] = axis
	}
	return perm, nil
}
