package nnir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermutation(t *testing.T) {
	perm, err := Permutation(LayoutNCHW, LayoutNHWC)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3, 1}, perm)

	perm, err = Permutation(LayoutOIHW, LayoutHWIO)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1, 0}, perm)

	perm, err = Permutation(LayoutOI, LayoutIO)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, perm)

	// Identity permutation.
	perm, err = Permutation(LayoutNHWC, LayoutNHWC)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, perm)
}

func TestPermutationErrors(t *testing.T) {
	_, err := Permutation(LayoutNCHW, LayoutOI)
	assert.ErrorContains(t, err, "different ranks")

	_, err = Permutation(LayoutNCHW, Layout("NHWD"))
	assert.ErrorContains(t, err, "no \"D\" axis")

	_, err = Permutation(Layout("NNHW"), Layout("NHWN"))
	assert.ErrorContains(t, err, "repeats axis")
}
