// Package engine implements the schema read/write engine: recursive
// dispatch over schema.Type, the struct
// reader with key-position tracking, the array reader's three length
// policies, and the two-pass back-patching struct writer.
//
// Grounded on the low-level cursor shape and sync.Pool-backed working-state
// reuse of a reflect-driven reader/writer pair, and on
// original_source/src/ty/read_struct.rs, write_struct.rs, read_array.rs,
// ty/mod.rs for the exact algorithm.
package engine

// Limits bounds resource usage during a Read or Write, guarding against malicious or
// malformed schemas/input driving unbounded recursion or allocation.
// A value of 0 means "no limit".
type Limits struct {
	// MaxDepth is the maximum Struct/Array/Encrypt/Converter nesting depth.
	MaxDepth int
}

// DefaultLimits are generous limits suitable for trusted schemas.
var DefaultLimits = Limits{MaxDepth: 100}

// SecureLimits are conservative limits for untrusted schemas or input.
var SecureLimits = Limits{MaxDepth: 32}

// NoLimits disables all resource limits. Use only with trusted input.
var NoLimits = Limits{}

// Options configures a Read or Write call.
type Options struct {
	// Limits bounds nesting depth.
	Limits Limits
}

// DefaultOptions is the zero-configuration choice: DefaultLimits.
var DefaultOptions = Options{Limits: DefaultLimits}

// SecureOptions is suitable for decoding schemas/input from an untrusted
// source.
var SecureOptions = Options{Limits: SecureLimits}
