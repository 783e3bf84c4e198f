package value

import (
	"fmt"
	"strconv"

	"github.com/valyala/fastjson"
)

// ParseJSON parses JSON text into a Value tree. Object key order is
// preserved because fastjson's own Object representation already walks
// members in source order (unlike encoding/json's map[string]any, which
// was the reason this package reaches for fastjson instead of the stdlib
// decoder).
func ParseJSON(data []byte) (Value, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return Value{}, fmt.Errorf("value: parse json: %w", err)
	}
	return fromFastjson(v)
}

func fromFastjson(v *fastjson.Value) (Value, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return NewNull(), nil
	case fastjson.TypeTrue:
		return NewBool(true), nil
	case fastjson.TypeFalse:
		return NewBool(false), nil
	case fastjson.TypeNumber:
		f, err := v.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("value: number: %w", err)
		}
		return NewFloat(f), nil
	case fastjson.TypeString:
		sb, err := v.StringBytes()
		if err != nil {
			return Value{}, fmt.Errorf("value: string: %w", err)
		}
		return NewString(string(sb)), nil
	case fastjson.TypeArray:
		items, err := v.Array()
		if err != nil {
			return Value{}, fmt.Errorf("value: array: %w", err)
		}
		out := make([]Value, len(items))
		for i, item := range items {
			cv, err := fromFastjson(item)
			if err != nil {
				return Value{}, err
			}
			out[i] = cv
		}
		return NewArray(out...), nil
	case fastjson.TypeObject:
		obj, err := v.Object()
		if err != nil {
			return Value{}, fmt.Errorf("value: object: %w", err)
		}
		out := NewObj()
		var visitErr error
		obj.Visit(func(key []byte, fv *fastjson.Value) {
			if visitErr != nil {
				return
			}
			cv, err := fromFastjson(fv)
			if err != nil {
				visitErr = err
				return
			}
			out.Set(string(key), cv)
		})
		if visitErr != nil {
			return Value{}, visitErr
		}
		return NewObject(out), nil
	default:
		return Value{}, fmt.Errorf("value: unsupported json type %v", v.Type())
	}
}

// MarshalJSON renders v as JSON text, preserving object key order. Bytes
// Values render as an array of 0-255 integers.
func (v Value) MarshalJSON() ([]byte, error) {
	a := new(fastjson.Arena)
	defer a.Reset()
	fv, err := toFastjson(a, v)
	if err != nil {
		return nil, err
	}
	return fv.MarshalTo(nil), nil
}

// UnmarshalJSON implements json.Unmarshaler in terms of ParseJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func toFastjson(a *fastjson.Arena, v Value) (*fastjson.Value, error) {
	switch v.kind {
	case Null:
		return a.NewNull(), nil
	case Bool:
		if v.b {
			return a.NewTrue(), nil
		}
		return a.NewFalse(), nil
	case Int:
		return a.NewNumberString(strconv.FormatInt(v.i, 10)), nil
	case Uint:
		return a.NewNumberString(strconv.FormatUint(v.u, 10)), nil
	case Float:
		return a.NewNumberString(strconv.FormatFloat(v.f, 'g', -1, 64)), nil
	case String:
		return a.NewString(v.s), nil
	case Bytes:
		arr := a.NewArray()
		for i, b := range v.bytes {
			arr.SetArrayItem(i, a.NewNumberString(strconv.Itoa(int(b))))
		}
		return arr, nil
	case Array:
		arr := a.NewArray()
		for i, item := range v.arr {
			fv, err := toFastjson(a, item)
			if err != nil {
				return nil, err
			}
			arr.SetArrayItem(i, fv)
		}
		return arr, nil
	case Object:
		obj := a.NewObject()
		for _, k := range v.obj.Keys() {
			item, _ := v.obj.Get(k)
			fv, err := toFastjson(a, item)
			if err != nil {
				return nil, err
			}
			obj.Set(k, fv)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("value: unknown kind %v", v.kind)
	}
}
