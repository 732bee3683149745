// Package benchmarks measures the lowering engine on synthetic networks:
// how long it takes to lower a deep operator chain into a program, and the
// steady-state execution cost of the resulting program.
//
// The tests run as normal Go tests with a wall-clock budget per benchmark:
//
//	go test ./internal/benchmarks -test.v -bench_duration=5s
package benchmarks

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"testing"
	"time"

	_ "github.com/gomlx/gomlx/backends/simplego"
	"github.com/gomlx/gomlx/pkg/core/graph/graphtest"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/core/tensors"

	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/nnir-gomlx/lower"
	"github.com/gomlx/nnir-gomlx/nnir"
	"github.com/gomlx/nnir-gomlx/ops"
	"github.com/janpfeifer/go-benchmarks"
	"github.com/janpfeifer/must"
)

var flagBenchDuration = flag.Duration("bench_duration", 1*time.Second,
	"Duration of each benchmark, not counting warm-up.")

var chainLengths = []int{1, 10, 100}

func f32Bytes(values ...float32) []byte {
	data := make([]byte, 4*len(values))
	for ii, v := range values {
		binary.NativeEndian.PutUint32(data[ii*4:], math.Float32bits(v))
	}
	return data
}

// chainNetwork builds a synthetic network of numOps elementwise operators:
// one input, a shared constant, then Add nodes chained one after another.
func chainNetwork(numOps, dim int) *nnir.Network {
	input := &nnir.Node{
		Name: "x", Alias: "x",
		Kind:       nnir.KindInput,
		NumOutputs: 1,
		Type:       nnir.Float32,
		Dims:       []int{dim},
	}
	ones := make([]float32, dim)
	for ii := range ones {
		ones[ii] = 1
	}
	one := &nnir.Node{
		Name: "one", Alias: "one",
		Kind:       nnir.KindLiteral,
		NumOutputs: 1,
		Type:       nnir.Float32,
		Dims:       []int{dim},
		Data:       f32Bytes(ones...),
	}

	nodes := []*nnir.Node{input, one}
	last := input
	for ii := range numOps {
		op := &nnir.Node{
			Name:       fmt.Sprintf("add_%d", ii),
			Alias:      fmt.Sprintf("add_%d", ii),
			Kind:       nnir.KindOperator,
			OpType:     "Add",
			NumOutputs: 1,
			Inputs: []nnir.Edge{
				{Producer: last, Slot: 0},
				{Producer: one, Slot: 0},
			},
		}
		nodes = append(nodes, op)
		last = op
	}
	nodes = append(nodes, &nnir.Node{
		Name:   "y",
		Kind:   nnir.KindOutput,
		Inputs: []nnir.Edge{{Producer: last, Slot: 0}},
	})

	return &nnir.Network{
		Name:    fmt.Sprintf("chain_%d", numOps),
		Graph:   &nnir.Graph{Nodes: nodes},
		Inputs:  []nnir.IOSpec{{Name: "x", Type: nnir.Float32, Dims: []int{dim}}},
		Outputs: []nnir.IOSpec{{Name: fmt.Sprintf("add_%d", numOps-1), Type: nnir.Float32, Dims: []int{dim}}},
	}
}

// TestBenchBuild measures the pure lowering cost: traversal, registry upkeep
// and graph emission, without compiling or running the program.
func TestBenchBuild(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	registry := ops.StandardRegistry()

	for chainIdx, numOps := range chainLengths {
		net := chainNetwork(numOps, 128)
		benchFn := benchmarks.NamedFunction{
			Name: fmt.Sprintf("%s/chain=%03d", t.Name(), numOps),
			Func: func() {
				program := must.M1(lower.Build(backend, registry, net))
				program.Finalize()
			},
		}
		benchmarks.New(benchFn).
			WithWarmUps(10).
			WithDuration(*flagBenchDuration).
			WithHeader(chainIdx == 0).
			Done()
	}
}

// TestBenchRun measures the steady-state execution of an already built and
// compiled program, excluding the input tensor allocation.
func TestBenchRun(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	registry := ops.StandardRegistry()

	const dim = 128
	input := tensors.FromShape(shapes.Make(dtypes.Float32, dim))
	tensors.MutableFlatData[float32](input, func(flat []float32) {
		for ii := range flat {
			flat[ii] = float32(ii)
		}
	})

	for chainIdx, numOps := range chainLengths {
		program := must.M1(lower.Build(backend, registry, chainNetwork(numOps, dim)))
		must.M(program.Compile())
		benchFn := benchmarks.NamedFunction{
			Name: fmt.Sprintf("%s/chain=%03d", t.Name(), numOps),
			Func: func() {
				results := must.M1(program.Run(input))
				for _, result := range results {
					// Force transfer to local memory: this should be part of the cost.
					tensors.ConstFlatData(result, func(flat []float32) {
						_ = flat[0]
					})
					result.FinalizeAll()
				}
			},
		}
		benchmarks.New(benchFn).
			WithWarmUps(10).
			WithDuration(*flagBenchDuration).
			WithHeader(chainIdx == 0).
			Done()
		program.Finalize()
	}
}
