package lower

import (
	"testing"

	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/nnir-gomlx/nnir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDTypeOf(t *testing.T) {
	for elemType, want := range map[nnir.ElementType]dtypes.DType{
		nnir.Bool:     dtypes.Bool,
		nnir.Float16:  dtypes.Float16,
		nnir.BFloat16: dtypes.BFloat16,
		nnir.Float32:  dtypes.Float32,
		nnir.Float64:  dtypes.Float64,
		nnir.Int8:     dtypes.Int8,
		nnir.Int32:    dtypes.Int32,
		nnir.Int64:    dtypes.Int64,
		nnir.Uint8:    dtypes.Uint8,
		nnir.Uint64:   dtypes.Uint64,
	} {
		got, err := dtypeOf(elemType)
		require.NoError(t, err, "element type %s", elemType)
		assert.Equal(t, want, got, "element type %s", elemType)
	}

	_, err := dtypeOf(nnir.InvalidType)
	require.Error(t, err)
	_, err = dtypeOf(nnir.ElementType(999))
	require.Error(t, err)
}
