package nnir

import "fmt"

// AttrKind enumerates the closed set of attribute payload kinds a host node
// may carry. There is exactly one case per supported kind; AttrVoid and
// AttrOpaque exist so hosts can represent attributes the engine must reject
// explicitly instead of dropping them.
type AttrKind int

const (
	// AttrVoid is an attribute with no representable value.
	AttrVoid AttrKind = iota
	AttrBool
	AttrInt
	AttrFloat
	AttrString
	AttrStrings
	AttrFloat32s
	AttrFloat64s
	AttrInt8s
	AttrInt16s
	AttrInt32s
	AttrInt64s
	AttrUint8s
	AttrUint16s
	AttrUint32s
	AttrUint64s
	// AttrOpaque holds a raw memory reference the engine cannot translate.
	AttrOpaque
)

// String implements fmt.Stringer.
func (k AttrKind) String() string {
	switch k {
	case AttrVoid:
		return "Void"
	case AttrBool:
		return "Bool"
	case AttrInt:
		return "Int"
	case AttrFloat:
		return "Float"
	case AttrString:
		return "String"
	case AttrStrings:
		return "Strings"
	case AttrFloat32s:
		return "Float32s"
	case AttrFloat64s:
		return "Float64s"
	case AttrInt8s:
		return "Int8s"
	case AttrInt16s:
		return "Int16s"
	case AttrInt32s:
		return "Int32s"
	case AttrInt64s:
		return "Int64s"
	case AttrUint8s:
		return "Uint8s"
	case AttrUint16s:
		return "Uint16s"
	case AttrUint32s:
		return "Uint32s"
	case AttrUint64s:
		return "Uint64s"
	case AttrOpaque:
		return "Opaque"
	}
	return fmt.Sprintf("AttrKind(%d)", int(k))
}

// Attribute is one named, kind-tagged parameter of a host node. Only the
// payload field matching Kind is meaningful.
type Attribute struct {
	Name string
	Kind AttrKind

	Bool   bool
	Int    int64
	Float  float64
	Str    string
	Strs   []string
	F32s   []float32
	F64s   []float64
	I8s    []int8
	I16s   []int16
	I32s   []int32
	I64s   []int64
	U8s    []uint8
	U16s   []uint16
	U32s   []uint32
	U64s   []uint64
	Opaque any
}

// String implements fmt.Stringer.
func (a Attribute) String() string {
	return fmt.Sprintf("%s<%s>", a.Name, a.Kind)
}

func BoolAttr(name string, v bool) Attribute { return Attribute{Name: name, Kind: AttrBool, Bool: v} }

func IntAttr(name string, v int64) Attribute { return Attribute{Name: name, Kind: AttrInt, Int: v} }

func FloatAttr(name string, v float64) Attribute {
	return Attribute{Name: name, Kind: AttrFloat, Float: v}
}
func StringAttr(name string, v string) Attribute {
	return Attribute{Name: name, Kind: AttrString, Str: v}
}

func StringsAttr(name string, v []string) Attribute {
	return Attribute{Name: name, Kind: AttrStrings, Strs: v}
}

func Float32sAttr(name string, v []float32) Attribute {
	return Attribute{Name: name, Kind: AttrFloat32s, F32s: v}
}

func Float64sAttr(name string, v []float64) Attribute {
	return Attribute{Name: name, Kind: AttrFloat64s, F64s: v}
}

func Int8sAttr(name string, v []int8) Attribute {
	return Attribute{Name: name, Kind: AttrInt8s, I8s: v}
}

func Int16sAttr(name string, v []int16) Attribute {
	return Attribute{Name: name, Kind: AttrInt16s, I16s: v}
}

func Int32sAttr(name string, v []int32) Attribute {
	return Attribute{Name: name, Kind: AttrInt32s, I32s: v}
}

func Int64sAttr(name string, v []int64) Attribute {
	return Attribute{Name: name, Kind: AttrInt64s, I64s: v}
}

func Uint8sAttr(name string, v []uint8) Attribute {
	return Attribute{Name: name, Kind: AttrUint8s, U8s: v}
}

func Uint16sAttr(name string, v []uint16) Attribute {
	return Attribute{Name: name, Kind: AttrUint16s, U16s: v}
}

func Uint32sAttr(name string, v []uint32) Attribute {
	return Attribute{Name: name, Kind: AttrUint32s, U32s: v}
}

func Uint64sAttr(name string, v []uint64) Attribute {
	return Attribute{Name: name, Kind: AttrUint64s, U64s: v}
}

func VoidAttr(name string) Attribute { return Attribute{Name: name, Kind: AttrVoid} }

func OpaqueAttr(name string, ref any) Attribute {
	return Attribute{Name: name, Kind: AttrOpaque, Opaque: ref}
}
