// Package value implements the JSON-shaped dynamic tree the engine reads
// into and writes from: null, boolean, signed/unsigned/float number,
// string, byte array, ordered sequence, and an object whose keys preserve
// field insertion order.
//
// Built fully dynamic: there is no Go struct on the other end,
// only the schema.Type tree, so Value has to carry its own shape rather than
// borrow reflect.Type's.
package value

import "fmt"

// Kind identifies which JSON shape a Value holds.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int
	Uint
	Float
	String
	Bytes
	Array
	Object
)

// String returns a human-readable name for the kind, used in error messages.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the dynamic JSON-shaped tree. The zero value is Null.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	u     uint64
	f     float64
	s     string
	bytes []byte
	arr   []Value
	obj   *Obj
}

// NewNull returns the null Value.
func NewNull() Value { return Value{kind: Null} }

// NewBool returns a boolean Value.
func NewBool(b bool) Value { return Value{kind: Bool, b: b} }

// NewInt returns a signed integer Value.
func NewInt(i int64) Value { return Value{kind: Int, i: i} }

// NewUint returns an unsigned integer Value.
func NewUint(u uint64) Value { return Value{kind: Uint, u: u} }

// NewFloat returns a floating point Value.
func NewFloat(f float64) Value { return Value{kind: Float, f: f} }

// NewString returns a string Value.
func NewString(s string) Value { return Value{kind: String, s: s} }

// NewBytes returns a byte-slice Value. On the wire to JSON text, this
// renders as an array of 0-255 integers.
func NewBytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: Bytes, bytes: cp}
}

// NewArray returns a sequence Value containing items, in order.
func NewArray(items ...Value) Value {
	arr := make([]Value, len(items))
	copy(arr, items)
	return Value{kind: Array, arr: arr}
}

// NewObject returns an object Value wrapping obj.
func NewObject(obj *Obj) Value {
	if obj == nil {
		obj = NewObj()
	}
	return Value{kind: Object, obj: obj}
}

// Kind reports the Value's shape.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == Null }

// Bool returns the boolean payload and whether v is a Bool.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == Bool }

// Int returns the signed-integer payload and whether v is an Int.
func (v Value) Int() (int64, bool) { return v.i, v.kind == Int }

// Uint returns the unsigned-integer payload and whether v is a Uint.
func (v Value) Uint() (uint64, bool) { return v.u, v.kind == Uint }

// Float returns the float payload and whether v is a Float.
func (v Value) Float() (float64, bool) { return v.f, v.kind == Float }

// Str returns the string payload and whether v is a String.
func (v Value) Str() (string, bool) { return v.s, v.kind == String }

// ByteSlice returns the bytes payload and whether v is Bytes.
func (v Value) ByteSlice() ([]byte, bool) { return v.bytes, v.kind == Bytes }

// Items returns the sequence payload and whether v is an Array.
func (v Value) Items() ([]Value, bool) { return v.arr, v.kind == Array }

// ObjVal returns the object payload and whether v is an Object.
func (v Value) ObjVal() (*Obj, bool) { return v.obj, v.kind == Object }

// AsInt64 coerces v to a signed 64-bit integer, accepting Int, Uint (if it
// fits), and Float (only when its fractional part is zero). Any other shape,
// or a non-integral float, is reported as !ok — callers (principally the
// sizing resolver and the struct writer's by-field coercion) turn that into
// LengthTargetIsInvalid: a by-target must coerce to an exact integer, a
// fractional float does not qualify.
func (v Value) AsInt64() (int64, bool) {
	switch v.kind {
	case Int:
		return v.i, true
	case Uint:
		if v.u > 1<<63-1 {
			return 0, false
		}
		return int64(v.u), true
	case Float:
		if v.f != float64(int64(v.f)) {
			return 0, false
		}
		return int64(v.f), true
	default:
		return 0, false
	}
}

// AsUint64 coerces v to an unsigned 64-bit integer following the same rules
// as AsInt64, rejecting negative values.
func (v Value) AsUint64() (uint64, bool) {
	switch v.kind {
	case Uint:
		return v.u, true
	case Int:
		if v.i < 0 {
			return 0, false
		}
		return uint64(v.i), true
	case Float:
		if v.f < 0 || v.f != float64(uint64(v.f)) {
			return 0, false
		}
		return uint64(v.f), true
	default:
		return 0, false
	}
}

// Equal reports deep structural equality between two Values.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Bool:
		return a.b == b.b
	case Int:
		return a.i == b.i
	case Uint:
		return a.u == b.u
	case Float:
		return a.f == b.f
	case String:
		return a.s == b.s
	case Bytes:
		if len(a.bytes) != len(b.bytes) {
			return false
		}
		for i := range a.bytes {
			if a.bytes[i] != b.bytes[i] {
				return false
			}
		}
		return true
	case Array:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, k := range a.obj.Keys() {
			av, _ := a.obj.Get(k)
			bv, ok := b.obj.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Obj is an insertion-ordered string-keyed map, the backing store for
// Object Values. Field order is preserved on read: an object is a string-
// keyed map preserving field insertion order, not an unordered map.
type Obj struct {
	keys []string
	vals map[string]Value
}

// NewObj returns an empty Obj.
func NewObj() *Obj {
	return &Obj{vals: make(map[string]Value)}
}

// Set inserts or updates key. New keys are appended to the end of Keys().
func (o *Obj) Set(key string, v Value) {
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// Get returns the value for key, if present.
func (o *Obj) Get(key string) (Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Obj) Keys() []string {
	return o.keys
}

// Len returns the number of entries.
func (o *Obj) Len() int {
	return len(o.keys)
}

// GoString implements fmt.GoStringer for debugging/test failure output.
func (v Value) GoString() string {
	switch v.kind {
	case Object:
		return fmt.Sprintf("value.Object(%v)", v.obj.Keys())
	case Array:
		return fmt.Sprintf("value.Array(len=%d)", len(v.arr))
	default:
		return fmt.Sprintf("value.Value{kind:%s}", v.kind)
	}
}
