package lower

import (
	"testing"

	. "github.com/gomlx/gomlx/pkg/core/graph" //nolint
	"github.com/gomlx/gomlx/pkg/core/graph/graphtest"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/nnir-gomlx/nnir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTensorTable(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	g := NewGraph(backend, "tensorTable")
	defer g.Finalize()

	a := Const(g, []float32{1, 2})
	b := Const(g, []float32{3, 4})

	table := newTensorTable()
	table.register(tensorKey{"n0", 0}, a, nnir.LayoutAny)
	table.register(tensorKey{"n0", 1}, b, nnir.LayoutNCHW)

	entry := table.resolve(tensorKey{"n0", 0})
	assert.Same(t, a, entry.handle)
	assert.Equal(t, nnir.LayoutAny, entry.layout)

	entry = table.resolve(tensorKey{"n0", 1})
	assert.Same(t, b, entry.handle)
	assert.Equal(t, nnir.LayoutNCHW, entry.layout)
}

func TestTensorTableRedirect(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	g := NewGraph(backend, "tensorTableRedirect")
	defer g.Finalize()

	raw := Const(g, []float32{1, 2})
	converted := Const(g, []float32{2, 1})
	again := Const(g, []float32{0, 0})

	table := newTensorTable()
	table.register(tensorKey{"n0", 0}, raw, nnir.LayoutNCHW)

	// A redirect shadows the raw entry for every later resolve.
	table.redirect(tensorKey{"n0", 0}, converted, nnir.LayoutNHWC)
	entry := table.resolve(tensorKey{"n0", 0})
	assert.Same(t, converted, entry.handle)
	assert.Equal(t, nnir.LayoutNHWC, entry.layout)

	// A second redirect overrides the first, it does not compose.
	table.redirect(tensorKey{"n0", 0}, again, nnir.LayoutAny)
	entry = table.resolve(tensorKey{"n0", 0})
	assert.Same(t, again, entry.handle)
}

func TestTensorTableRegisterTwice(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	g := NewGraph(backend, "tensorTableRegisterTwice")
	defer g.Finalize()

	handle := Const(g, float32(1))
	table := newTensorTable()
	table.register(tensorKey{"n0", 0}, handle, nnir.LayoutAny)

	err := exceptions.TryCatch[error](func() {
		table.register(tensorKey{"n0", 0}, handle, nnir.LayoutAny)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registered twice")
}

func TestTensorTableRedirectUnregistered(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	g := NewGraph(backend, "tensorTableRedirectUnregistered")
	defer g.Finalize()

	handle := Const(g, float32(1))
	table := newTensorTable()
	err := exceptions.TryCatch[error](func() {
		table.redirect(tensorKey{"n0", 0}, handle, nnir.LayoutAny)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect of unregistered key")
}

func TestTensorTableResolveUnknown(t *testing.T) {
	table := newTensorTable()
	err := exceptions.TryCatch[error](func() {
		table.resolve(tensorKey{"ghost", 2})
	})
	require.Error(t, err)
	assert.Equal(t, DependencyNotFound, KindOf(err))
	assert.Contains(t, err.Error(), `"ghost"`)
}
