// Package tensor provides the dense tensor type and shape arithmetic used
// throughout the Slate toolkit.
package tensor

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Float16
	Int32
	Int64
	Uint8
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Float16:
		return 2
	case Uint8:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	default:
		return "unknown"
	}
}

// ParseDataType converts the string representation used in serialized
// headers back to a DataType.
func ParseDataType(s string) (DataType, bool) {
	switch s {
	case "float32":
		return Float32, true
	case "float64":
		return Float64, true
	case "float16":
		return Float16, true
	case "int32":
		return Int32, true
	case "int64":
		return Int64, true
	case "uint8":
		return Uint8, true
	default:
		return 0, false
	}
}
