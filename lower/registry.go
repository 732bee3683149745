package lower

import (
	"fmt"

	. "github.com/gomlx/gomlx/pkg/core/graph" //nolint

	"github.com/gomlx/exceptions"
	"github.com/gomlx/nnir-gomlx/nnir"
)

// tensorKey identifies one produced tensor value: the producer node's identity
// plus the output slot it comes out of.
type tensorKey struct {
	producer string
	slot     int
}

// String implements fmt.Stringer.
func (k tensorKey) String() string {
	return fmt.Sprintf("%s:%d", k.producer, k.slot)
}

// tensorEntry is the handle currently registered for a key, together with the
// layout its producer published for it.
type tensorEntry struct {
	handle *Node
	layout nnir.Layout
}

// tensorTable is the tensor registry: the single source of truth for which
// target handle a given producer slot currently resolves to. It is exclusively
// owned by one Builder for the duration of one build.
//
// A key is written once by its producer's translator (topological order plus
// single-writer-per-key makes a duplicate a programming error). A key may
// additionally carry one redirection, installed when a corrective transform is
// inserted after the producer: consumers always resolve through the redirect
// before the raw entry.
type tensorTable struct {
	entries map[tensorKey]tensorEntry
	remap   map[tensorKey]tensorEntry
}

func newTensorTable() *tensorTable {
	return &tensorTable{
		entries: make(map[tensorKey]tensorEntry),
		remap:   make(map[tensorKey]tensorEntry),
	}
}

// register inserts the handle produced for key. Registering the same key twice
// within one traversal violates the single-writer discipline and fails loudly.
func (t *tensorTable) register(key tensorKey, handle *Node, layout nnir.Layout) {
	if _, found := t.entries[key]; found {
		exceptions.Panicf("tensor registry: key %s registered twice", key)
	}
	t.entries[key] = tensorEntry{handle: handle, layout: layout}
}

// redirect makes future resolve calls for key return handle instead of the
// originally registered entry. At most one redirection is kept per key: a
// second call overrides (not composes with) the first.
func (t *tensorTable) redirect(key tensorKey, handle *Node, layout nnir.Layout) {
	if _, found := t.entries[key]; !found {
		exceptions.Panicf("tensor registry: redirect of unregistered key %s", key)
	}
	t.remap[key] = tensorEntry{handle: handle, layout: layout}
}

// resolve returns the current handle for key, following the redirect if one
// is installed. An unknown key aborts the build with DependencyNotFound.
func (t *tensorTable) resolve(key tensorKey) tensorEntry {
	if entry, found := t.remap[key]; found {
		return entry
	}
	entry, found := t.entries[key]
	if !found {
		raisef(DependencyNotFound, key.producer,
			"no tensor registered for output slot %d -- either the graph is not topologically sorted or the edge references a node that was never processed", key.slot)
	}
	return entry
}
