package lower

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/nnir-gomlx/nnir"
	"github.com/gomlx/nnir-gomlx/ops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAttributes(t *testing.T) {
	node := &nnir.Node{
		Name:   "interp",
		Kind:   nnir.KindOperator,
		OpType: "Interpolate",
		Attrs: []nnir.Attribute{
			nnir.IntAttr("axis", 1),
			nnir.BoolAttr("keepdims", true),
			nnir.Float64sAttr("scales", []float64{1.0, 2.0}),
			nnir.StringAttr("mode", "nearest"),
		},
	}
	attrs := extractAttributes(node)
	require.Len(t, attrs, 4)
	assert.Equal(t, 1, attrs.Int("axis"))
	assert.True(t, attrs.BoolOr("keepdims", false))
	assert.Equal(t, []float64{1.0, 2.0}, attrs["scales"].AsFloats())
	assert.Equal(t, "nearest", attrs.StringOr("mode", ""))
}

func TestExtractAttributesSequences(t *testing.T) {
	node := &nnir.Node{
		Name: "seqs",
		Kind: nnir.KindOperator,
		Attrs: []nnir.Attribute{
			nnir.StringsAttr("names", []string{"a", "b"}),
			nnir.Float32sAttr("f32s", []float32{0.5, 1.5}),
			nnir.Int8sAttr("i8s", []int8{-1, 2}),
			nnir.Int16sAttr("i16s", []int16{-3, 4}),
			nnir.Int32sAttr("i32s", []int32{-5, 6}),
			nnir.Int64sAttr("i64s", []int64{-7, 8}),
			nnir.Uint8sAttr("u8s", []uint8{9, 10}),
			nnir.Uint16sAttr("u16s", []uint16{11, 12}),
			nnir.Uint32sAttr("u32s", []uint32{13, 14}),
			nnir.Uint64sAttr("u64s", []uint64{15, 16}),
		},
	}
	attrs := extractAttributes(node)
	assert.Equal(t, []string{"a", "b"}, attrs["names"].AsStrings())
	assert.Equal(t, []float64{0.5, 1.5}, attrs["f32s"].AsFloats())
	assert.Equal(t, []int{-1, 2}, attrs.Ints("i8s"))
	assert.Equal(t, []int{-3, 4}, attrs.Ints("i16s"))
	assert.Equal(t, []int{-5, 6}, attrs.Ints("i32s"))
	assert.Equal(t, []int{-7, 8}, attrs.Ints("i64s"))
	assert.Equal(t, []int{9, 10}, attrs.Ints("u8s"))
	assert.Equal(t, []int{11, 12}, attrs.Ints("u16s"))
	assert.Equal(t, []int{13, 14}, attrs.Ints("u32s"))
	assert.Equal(t, []int{15, 16}, attrs.Ints("u64s"))

	// Every extracted value must carry the right tag.
	for name, wantKind := range map[string]ops.ValueKind{
		"names": ops.ValueTuple,
		"f32s":  ops.ValueTuple,
		"i64s":  ops.ValueTuple,
	} {
		assert.Equal(t, wantKind, attrs[name].Kind(), "attribute %q", name)
	}
}

func TestExtractAttributesRejectsUntranslatable(t *testing.T) {
	for _, attr := range []nnir.Attribute{
		nnir.VoidAttr("empty"),
		nnir.OpaqueAttr("blob", struct{}{}),
	} {
		node := &nnir.Node{Name: "bad", Kind: nnir.KindOperator, Attrs: []nnir.Attribute{attr}}
		err := exceptions.TryCatch[error](func() { extractAttributes(node) })
		require.Error(t, err, "attribute %s", attr)
		assert.Equal(t, UnsupportedAttributeKind, KindOf(err))
		// The failure must name the offending attribute, never drop it silently.
		assert.Contains(t, err.Error(), `"`+attr.Name+`"`)
	}
}
