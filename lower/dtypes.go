package lower

import (
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/pkg/errors"

	"github.com/gomlx/nnir-gomlx/nnir"
)

// dtypeOf converts a host element type to the target representation's dtype.
func dtypeOf(t nnir.ElementType) (dtypes.DType, error) {
	switch t {
	case nnir.Bool:
		return dtypes.Bool, nil
	case nnir.Float16:
		return dtypes.Float16, nil
	case nnir.BFloat16:
		return dtypes.BFloat16, nil
	case nnir.Float32:
		return dtypes.Float32, nil
	case nnir.Float64:
		return dtypes.Float64, nil
	case nnir.Int8:
		return dtypes.Int8, nil
	case nnir.Int16:
		return dtypes.Int16, nil
	case nnir.Int32:
		return dtypes.Int32, nil
	case nnir.Int64:
		return dtypes.Int64, nil
	case nnir.Uint8:
		return dtypes.Uint8, nil
	case nnir.Uint16:
		return dtypes.Uint16, nil
	case nnir.Uint32:
		return dtypes.Uint32, nil
	case nnir.Uint64:
		return dtypes.Uint64, nil
	default:
		return dtypes.InvalidDType, errors.Errorf("unsupported/unknown host element type %v", t)
	}
}
