package codegen

import (
	"fmt"
	"io"
	"text/template"

	"github.com/ZB94/bin2json/pkg/schema"
)

// GoGenerator renders one Struct schema.Type as a tree of Go struct
// declarations, one per nested Struct it contains.
type GoGenerator struct{}

// NewGoGenerator returns a GoGenerator.
func NewGoGenerator() *GoGenerator { return &GoGenerator{} }

func (g *GoGenerator) Language() Language    { return LanguageGo }
func (g *GoGenerator) FileExtension() string { return ".go" }

// Generate writes a Go source file declaring name (and every Struct nested
// inside it) as a struct type whose fields carry a `bin2json:"<field>"` tag
// naming the schema field. encoding/json does not read that tag, so it does
// not map a decoded value's JSON keys onto these fields.
func (g *GoGenerator) Generate(w io.Writer, name string, root *schema.Type, opts Options) error {
	if root.Kind != schema.KindStruct {
		return &GeneratorError{Message: fmt.Sprintf("top-level generated type must be Struct, got %s", root.Kind), Path: []string{name}}
	}

	ctx := &goContext{opts: opts}
	if _, err := ctx.collectStruct(name, root, []string{name}); err != nil {
		return err
	}

	tmpl, err := template.New("go").Funcs(template.FuncMap{
		"tick": func() string { return "`" },
	}).Parse(goTemplate)
	if err != nil {
		return fmt.Errorf("codegen: parse template: %w", err)
	}
	return tmpl.Execute(w, ctx)
}

type goField struct {
	Name      string
	FieldName string
	Type      string
	Comment   string
}

type goStruct struct {
	Name    string
	Comment string
	Fields  []goField
}

type goContext struct {
	opts  Options
	Decls []*goStruct
}

func (c *goContext) Package() string { return c.opts.Package }

func (c *goContext) typeName(base string) string {
	return c.opts.TypePrefix + ToPascalCase(base) + c.opts.TypeSuffix
}

// collectStruct renders one Struct type into a goStruct, recursing into
// nested Struct/Array-of-Struct fields and registering each as its own
// declaration in c.Decls. Magic, Checksum, and Sign fields are wire-level
// bookkeeping the engine produces and validates on its own, so they have
// no native field in the generated struct.
func (c *goContext) collectStruct(hint string, ty *schema.Type, path []string) (string, error) {
	typeName := c.typeName(hint)
	decl := &goStruct{Name: typeName}
	if c.opts.GenerateComments {
		decl.Comment = fmt.Sprintf("// %s mirrors a Struct field of the same schema.", typeName)
	}

	for _, f := range ty.Fields {
		switch f.Type.Kind {
		case schema.KindMagic, schema.KindChecksum, schema.KindSign:
			continue
		}

		goType, err := c.resolveType(hint+"_"+f.Name, f.Type, append(path, f.Name))
		if err != nil {
			return "", err
		}

		field := goField{
			Name:      ToPascalCase(f.Name),
			FieldName: f.Name,
			Type:      goType,
		}
		if c.opts.GenerateComments {
			field.Comment = fieldComment(f.Type)
		}
		decl.Fields = append(decl.Fields, field)
	}

	c.Decls = append(c.Decls, decl)
	return typeName, nil
}

func (c *goContext) resolveType(hint string, ft *schema.Type, path []string) (string, error) {
	switch ft.Kind {
	case schema.KindBoolean:
		return "bool", nil
	case schema.KindInt8:
		return "int8", nil
	case schema.KindInt16:
		return "int16", nil
	case schema.KindInt32:
		return "int32", nil
	case schema.KindInt64:
		return "int64", nil
	case schema.KindUint8:
		return "uint8", nil
	case schema.KindUint16:
		return "uint16", nil
	case schema.KindUint32:
		return "uint32", nil
	case schema.KindUint64:
		return "uint64", nil
	case schema.KindFloat32:
		return "float32", nil
	case schema.KindFloat64:
		return "float64", nil
	case schema.KindString:
		return "string", nil
	case schema.KindBin:
		return "[]byte", nil
	case schema.KindStruct:
		return c.collectStruct(hint, ft, path)
	case schema.KindArray:
		elem, err := c.resolveType(hint+"_item", ft.Element, append(path, "[]"))
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case schema.KindEnum:
		// The concrete shape depends at runtime on a sibling field's value
		// there's no single Go type for it.
		return "any", nil
	case schema.KindConverter:
		return c.resolveType(hint, ft.Original, path)
	case schema.KindEncrypt:
		return c.resolveType(hint, ft.Inner, path)
	default:
		return "", &GeneratorError{Message: fmt.Sprintf("%s has no native Go shape", ft.Kind), Path: path}
	}
}

func fieldComment(ft *schema.Type) string {
	switch ft.Kind {
	case schema.KindEnum:
		return fmt.Sprintf("// dispatched by the %q field", ft.By)
	case schema.KindEncrypt:
		return "// decrypted transparently on read, encrypted on write"
	case schema.KindConverter:
		return "// passes through a schema converter"
	default:
		return ""
	}
}

const goTemplate = `// Code generated by bin2json generate. DO NOT EDIT.

package {{.Package}}
{{range .Decls}}
{{if .Comment}}{{.Comment}}
{{end}}type {{.Name}} struct {
{{range .Fields}}{{if .Comment}}	{{.Comment}}
{{end}}	{{.Name}} {{.Type}} {{tick}}bin2json:"{{.FieldName}}"{{tick}}
{{end}}}
{{end}}`
