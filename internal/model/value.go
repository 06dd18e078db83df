package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Kind identifies the type of data held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

var (
	ErrValue = errors.New("value error")
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON value which keeps track of its kind, integers and floats are held apart
// so values like 50 and 50.0 survive an encode/decode round trip.
//
// The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

// Arguments are the named parameters of an xAPI command.
type Arguments map[string]Value

func Null() Value              { return Value{} }
func Bool(b bool) Value        { return Value{kind: KindBool, b: b} }
func Int(i int64) Value        { return Value{kind: KindInt, i: i} }
func Float(f float64) Value    { return Value{kind: KindFloat, f: f} }
func String(s string) Value    { return Value{kind: KindString, s: s} }
func Array(vs ...Value) Value  { return Value{kind: KindArray, arr: vs} }
func Object(m Arguments) Value { return Value{kind: KindObject, obj: m} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

func (v Value) AsObject() (Arguments, bool) { return v.obj, v.kind == KindObject }

// Field returns the object member by key, a null Value is returned for non objects or missing keys.
func (v Value) Field(key string) Value {
	if v.kind != KindObject {
		return Null()
	}

	return v.obj[key]
}

// Interface returns the value as plain Go types, objects are map[string]any and arrays []any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindArray:
		l := make([]any, 0, len(v.arr))
		for _, e := range v.arr {
			l = append(l, e.Interface())
		}

		return l
	case KindObject:
		m := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			m[k] = e.Interface()
		}

		return m
	default:
		return nil
	}
}

// String renders the value as compact JSON.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s: %s>", v.kind, err)
	}

	return string(b)
}

// Equal reports whether both values are of the same kind and hold the same data.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindArray:
		return slices.EqualFunc(v.arr, o.arr, func(a, b Value) bool { return a.Equal(b) })
	case KindObject:
		return maps.EqualFunc(v.obj, o.obj, func(a, b Value) bool { return a.Equal(b) })
	}

	return false
}

// MarshalJSON implements the json.Marshaler interface.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, errors.Wrap(ErrValue, "unsupported float value: "+strconv.FormatFloat(v.f, 'g', -1, 64))
		}

		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		// keep integral floats distinguishable from integers
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}

		return []byte(s), nil
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}

		return json.Marshal(v.arr)
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}

		return json.Marshal(map[string]Value(v.obj))
	}

	return nil, errors.Wrap(ErrValue, "unknown kind: "+v.kind.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	parsed, err := FromInterface(raw)
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

// FromInterface converts decoded JSON data into a Value.
//
// Numbers are expected as json.Number, float64 or any of the Go integer types.
func FromInterface(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return numberValue(t)
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float64:
		return Float(t), nil
	case []any:
		arr := make([]Value, 0, len(t))
		for _, e := range t {
			ev, err := FromInterface(e)
			if err != nil {
				return Null(), err
			}

			arr = append(arr, ev)
		}

		return Array(arr...), nil
	case map[string]any:
		obj := make(Arguments, len(t))
		for k, e := range t {
			ev, err := FromInterface(e)
			if err != nil {
				return Null(), err
			}

			obj[k] = ev
		}

		return Object(obj), nil
	}

	return Null(), errors.Wrap(ErrValue, fmt.Sprintf("unsupported type %T", raw))
}

func numberValue(n json.Number) (Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
	}

	f, err := n.Float64()
	if err != nil {
		return Null(), errors.Wrap(ErrValue, "invalid number: "+s)
	}

	return Float(f), nil
}
