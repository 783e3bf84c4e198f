// Package codegen renders a schema.Type tree as Go struct declarations, for
// users who want a native Go shape to decode a decoded value.Value::Object
// into (via its already-ordered JSON text) rather than work with
// value.Value directly.
package codegen

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ZB94/bin2json/pkg/schema"
)

// Language names a code generation target. Go is the only one implemented;
// the registry is kept open the way a multi-language generator framework
// should be, since a schema-to-native-struct generator is exactly the
// kind of thing other languages in this ecosystem want too.
type Language string

const (
	LanguageGo Language = "go"
)

// Generator produces source code for one named Struct type in a schema,
// given its registered name (schemas have no top-level name of their own;
// the CLI supplies one per generated file).
type Generator interface {
	Generate(w io.Writer, name string, root *schema.Type, options Options) error
	Language() Language
	FileExtension() string
}

// Options configures code generation.
type Options struct {
	// Package overrides the generated file's package name.
	Package string

	// GenerateComments includes field-kind comments above each struct field.
	GenerateComments bool

	// TypePrefix adds a prefix to every generated type name.
	TypePrefix string

	// TypeSuffix adds a suffix to every generated type name.
	TypeSuffix string
}

// DefaultOptions returns the default code generation options.
func DefaultOptions() Options {
	return Options{
		Package:          "schemas",
		GenerateComments: true,
	}
}

var registry = make(map[Language]Generator)

// Register registers a generator for a language.
func Register(gen Generator) {
	registry[gen.Language()] = gen
}

// Get returns the generator for a language.
func Get(lang Language) (Generator, bool) {
	gen, ok := registry[lang]
	return gen, ok
}

// Languages returns all registered languages.
func Languages() []Language {
	langs := make([]Language, 0, len(registry))
	for lang := range registry {
		langs = append(langs, lang)
	}
	return langs
}

var titleCaser = cases.Title(language.English)

// ToPascalCase converts a schema field/type name to PascalCase.
func ToPascalCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = titleCaser.String(strings.ToLower(p))
	}
	return strings.Join(parts, "")
}

// ToCamelCase converts a schema field/type name to camelCase.
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return ""
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}

// ToSnakeCase converts a schema field/type name to snake_case.
func ToSnakeCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "_")
}

func splitName(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	var current strings.Builder
	for i, r := range s {
		if r == '_' || r == '-' {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			continue
		}
		if i > 0 && isUpper(r) && !isUpper(rune(s[i-1])) {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

// Indent indents each non-empty line of s by the given number of tabs.
func Indent(s string, tabs int) string {
	indent := strings.Repeat("\t", tabs)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

// GoComment wraps text as a Go doc comment, one line per "//".
func GoComment(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "// " + line
	}
	return strings.Join(lines, "\n")
}

// GeneratorError reports a schema shape codegen can't render as Go, with
// the dotted field path at which it occurred.
type GeneratorError struct {
	Message string
	Path    []string
}

func (e *GeneratorError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("codegen: %s", e.Message)
	}
	return fmt.Sprintf("codegen: %s: %s", strings.Join(e.Path, "."), e.Message)
}
