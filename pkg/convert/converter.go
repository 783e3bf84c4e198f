// Package convert implements the expression-based value converter: an
// optional pre-validate expression, an
// optional transform expression, and an optional post-validate expression,
// evaluated against a value with its fields bound as variables.
//
// Grounded on original_source/src/ty/converter.rs and ty/utils.rs::set_ctx,
// ported from the evalexpr crate to github.com/expr-lang/expr. evalexpr's
// HashMapContext binds flat, literal variable names such as "self[0]" and
// "N.len" — a trick specific to evalexpr's string-keyed context that has no
// equivalent in expr-lang's AST-driven identifier resolution. This package
// instead binds "self" to the value's native Go shape and relies on
// expr-lang's own indexing (self[0]) and built-in len() function in place
// of the source's self.len pseudo-field; see DESIGN.md for the rationale.
package convert

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/ZB94/bin2json/pkg/value"
)

// Converter is a triple of optional expressions evaluated in order:
// BeforeValid (must evaluate to true), Convert (replaces the value if
// present), AfterValid (must evaluate to true against the replaced value).
type Converter struct {
	BeforeValid string `json:"before_valid,omitempty"`
	Convert     string `json:"convert,omitempty"`
	AfterValid  string `json:"after_valid,omitempty"`
}

// New returns a Converter with only the transform expression set.
func New(convertExpr string) Converter {
	return Converter{Convert: convertExpr}
}

// IsZero reports whether c has no expressions configured, i.e. it is a
// no-op converter.
func (c Converter) IsZero() bool {
	return c.BeforeValid == "" && c.Convert == "" && c.AfterValid == ""
}

// Apply runs the converter's three stages against v, returning the
// (possibly transformed) value. An empty Converter returns v unchanged.
func (c Converter) Apply(v value.Value) (value.Value, error) {
	if c.BeforeValid != "" {
		ok, err := evalBool(c.BeforeValid, v)
		if err != nil {
			return value.Value{}, fmt.Errorf("convert: before_valid: %w", err)
		}
		if !ok {
			return value.Value{}, fmt.Errorf("convert: before_valid failed")
		}
	}

	if c.Convert != "" {
		out, err := expr.Eval(c.Convert, env(v))
		if err != nil {
			return value.Value{}, fmt.Errorf("convert: convert: %w", err)
		}
		v, err = fromNative(out)
		if err != nil {
			return value.Value{}, fmt.Errorf("convert: convert: %w", err)
		}
	}

	if c.AfterValid != "" {
		ok, err := evalBool(c.AfterValid, v)
		if err != nil {
			return value.Value{}, fmt.Errorf("convert: after_valid: %w", err)
		}
		if !ok {
			return value.Value{}, fmt.Errorf("convert: after_valid failed")
		}
	}

	return v, nil
}

func evalBool(code string, v value.Value) (bool, error) {
	out, err := expr.Eval(code, env(v))
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q did not evaluate to a boolean", code)
	}
	return b, nil
}

// env builds the expr-lang environment binding "self" to v's native Go
// shape.
func env(v value.Value) map[string]any {
	return map[string]any{"self": toNative(v)}
}

// toNative converts a Value to the native Go type expr-lang's evaluator
// operates on: bool, int64, uint64, float64, string, []byte, []any, or
// map[string]any, recursively.
func toNative(v value.Value) any {
	switch v.Kind() {
	case value.Null:
		return nil
	case value.Bool:
		b, _ := v.Bool()
		return b
	case value.Int:
		i, _ := v.Int()
		return i
	case value.Uint:
		u, _ := v.Uint()
		return u
	case value.Float:
		f, _ := v.Float()
		return f
	case value.String:
		s, _ := v.Str()
		return s
	case value.Bytes:
		b, _ := v.ByteSlice()
		return b
	case value.Array:
		items, _ := v.Items()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toNative(item)
		}
		return out
	case value.Object:
		obj, _ := v.ObjVal()
		out := make(map[string]any, obj.Len())
		for _, k := range obj.Keys() {
			fv, _ := obj.Get(k)
			out[k] = toNative(fv)
		}
		return out
	default:
		return nil
	}
}

// fromNative converts an expr-lang evaluation result back into a Value.
// Numeric results, integer or not, become Float Values.
func fromNative(out any) (value.Value, error) {
	switch t := out.(type) {
	case nil:
		return value.NewNull(), nil
	case bool:
		return value.NewBool(t), nil
	case string:
		return value.NewString(t), nil
	case []byte:
		return value.NewBytes(t), nil
	case int:
		return value.NewFloat(float64(t)), nil
	case int64:
		return value.NewFloat(float64(t)), nil
	case uint64:
		return value.NewFloat(float64(t)), nil
	case float64:
		return value.NewFloat(t), nil
	case float32:
		return value.NewFloat(float64(t)), nil
	case []any:
		items := make([]value.Value, len(t))
		for i, item := range t {
			cv, err := fromNative(item)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = cv
		}
		return value.NewArray(items...), nil
	case map[string]any:
		obj := value.NewObj()
		for k, item := range t {
			cv, err := fromNative(item)
			if err != nil {
				return value.Value{}, err
			}
			obj.Set(k, cv)
		}
		return value.NewObject(obj), nil
	default:
		return value.Value{}, fmt.Errorf("convert: unsupported expression result type %T", out)
	}
}
