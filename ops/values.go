package ops

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
)

// ValueKind tags one Value of an attribute dictionary.
type ValueKind int

const (
	ValueBool ValueKind = iota
	ValueInt
	ValueFloat
	ValueString
	ValueTuple
)

// String implements fmt.Stringer.
func (k ValueKind) String() string {
	switch k {
	case ValueBool:
		return "Bool"
	case ValueInt:
		return "Int"
	case ValueFloat:
		return "Float"
	case ValueString:
		return "String"
	case ValueTuple:
		return "Tuple"
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Value is one kind-tagged entry of an attribute dictionary: a boolean, a
// 64-bit integer, a double, a string, or a tuple of Values. It is the generic
// form operator builders consume, independent of the host's attribute
// representation.
type Value struct {
	kind  ValueKind
	b     bool
	i     int64
	f     float64
	s     string
	tuple []Value
}

func Bool(v bool) Value { return Value{kind: ValueBool, b: v} }

func Int(v int64) Value { return Value{kind: ValueInt, i: v} }

func Float(v float64) Value { return Value{kind: ValueFloat, f: v} }

func String(v string) Value { return Value{kind: ValueString, s: v} }

func Tuple(vs ...Value) Value { return Value{kind: ValueTuple, tuple: vs} }

// Kind returns the tag of the value.
func (v Value) Kind() ValueKind { return v.kind }

func (v Value) checkKind(want ValueKind) {
	if v.kind != want {
		exceptions.Panicf("attribute value is %s, not %s", v.kind, want)
	}
}

// AsBool returns the boolean payload. It panics if the value is not a Bool.
func (v Value) AsBool() bool {
	v.checkKind(ValueBool)
	return v.b
}

// AsInt returns the integer payload. It panics if the value is not an Int.
func (v Value) AsInt() int64 {
	v.checkKind(ValueInt)
	return v.i
}

// AsFloat returns the double payload. It panics if the value is not a Float.
func (v Value) AsFloat() float64 {
	v.checkKind(ValueFloat)
	return v.f
}

// AsString returns the string payload. It panics if the value is not a String.
func (v Value) AsString() string {
	v.checkKind(ValueString)
	return v.s
}

// AsTuple returns the tuple payload. It panics if the value is not a Tuple.
func (v Value) AsTuple() []Value {
	v.checkKind(ValueTuple)
	return v.tuple
}

// AsInts flattens a tuple of Ints into a []int. A scalar Int is accepted as a
// one-element list, mirroring how hosts often collapse singleton sequences.
func (v Value) AsInts() []int {
	if v.kind == ValueInt {
		return []int{int(v.i)}
	}
	return sliceMap(v.AsTuple(), func(e Value) int { return int(e.AsInt()) })
}

// AsFloats flattens a tuple of Floats into a []float64. A scalar Float is
// accepted as a one-element list.
func (v Value) AsFloats() []float64 {
	if v.kind == ValueFloat {
		return []float64{v.f}
	}
	return sliceMap(v.AsTuple(), func(e Value) float64 { return e.AsFloat() })
}

// AsStrings flattens a tuple of Strings into a []string.
func (v Value) AsStrings() []string {
	if v.kind == ValueString {
		return []string{v.s}
	}
	return sliceMap(v.AsTuple(), func(e Value) string { return e.AsString() })
}

// String implements fmt.Stringer.
func (v Value) String() string {
	switch v.kind {
	case ValueBool:
		return fmt.Sprintf("%v", v.b)
	case ValueInt:
		return fmt.Sprintf("%d", v.i)
	case ValueFloat:
		return fmt.Sprintf("%g", v.f)
	case ValueString:
		return fmt.Sprintf("%q", v.s)
	case ValueTuple:
		parts := sliceMap(v.tuple, func(e Value) string { return e.String() })
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return fmt.Sprintf("Value<%s>", v.kind)
}

// Attributes is the order-insensitive attribute dictionary handed to an
// operator builder: attribute name to kind-tagged value. Built fresh per
// operator node and discarded after the builder returns.
type Attributes map[string]Value

// must returns the named value or panics naming the missing attribute.
func (a Attributes) must(name string) Value {
	v, ok := a[name]
	if !ok {
		exceptions.Panicf("missing required attribute %q", name)
	}
	return v
}

// Int returns the named integer attribute, panicking if absent or mistyped.
func (a Attributes) Int(name string) int { return int(a.must(name).AsInt()) }

// Ints returns the named integer-sequence attribute, panicking if absent.
func (a Attributes) Ints(name string) []int { return a.must(name).AsInts() }

// IntOr returns the named integer attribute or defaultValue if absent.
func (a Attributes) IntOr(name string, defaultValue int) int {
	v, ok := a[name]
	if !ok {
		return defaultValue
	}
	return int(v.AsInt())
}

// IntsOr returns the named integer-sequence attribute or defaultValues if absent.
func (a Attributes) IntsOr(name string, defaultValues []int) []int {
	v, ok := a[name]
	if !ok {
		return defaultValues
	}
	return v.AsInts()
}

// BoolOr returns the named boolean attribute or defaultValue if absent.
func (a Attributes) BoolOr(name string, defaultValue bool) bool {
	v, ok := a[name]
	if !ok {
		return defaultValue
	}
	return v.AsBool()
}

// FloatOr returns the named double attribute or defaultValue if absent.
func (a Attributes) FloatOr(name string, defaultValue float64) float64 {
	v, ok := a[name]
	if !ok {
		return defaultValue
	}
	return v.AsFloat()
}

// FloatsOr returns the named double-sequence attribute or defaultValues if absent.
func (a Attributes) FloatsOr(name string, defaultValues []float64) []float64 {
	v, ok := a[name]
	if !ok {
		return defaultValues
	}
	return v.AsFloats()
}

// StringOr returns the named string attribute or defaultValue if absent.
func (a Attributes) StringOr(name, defaultValue string) string {
	v, ok := a[name]
	if !ok {
		return defaultValue
	}
	return v.AsString()
}

// sliceMap executes the given function sequentially for every element on in, and returns a mapped slice.
func sliceMap[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}
