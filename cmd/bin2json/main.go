// Command bin2json is the schema-driven binary/JSON codec's command line
// front end.
//
// Usage:
//
//	bin2json decode -schema <schema-file> <bytes-file>
//	bin2json encode -schema <schema-file> <json-file>
//	bin2json validate <schema-file>...
//	bin2json generate [options] <schema-file>...
//
// Decode Command:
//
//	Read a binary file against a schema and print its JSON value.
//
// Encode Command:
//
//	Read a JSON value and encode it against a schema, writing bytes to stdout.
//
// Validate Command:
//
//	Parse schema files without decoding or encoding anything.
//
// Generate Command:
//
//	Generate native Go struct declarations from schema files.
//
//	Options:
//	  -lang string      Target language: go (default "go")
//	  -out string       Output directory (default ".")
//	  -package string   Override package name
//	  -prefix string    Add prefix to all type names
//	  -suffix string    Add suffix to all type names
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/ZB94/bin2json/pkg/codegen"
	"github.com/ZB94/bin2json/pkg/engine"
	"github.com/ZB94/bin2json/pkg/schema"
	"github.com/ZB94/bin2json/pkg/value"
)

func init() {
	codegen.Register(codegen.NewGoGenerator())
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "decode", "d":
		cmdDecode(os.Args[2:])
	case "encode", "e":
		cmdEncode(os.Args[2:])
	case "validate", "val", "v":
		cmdValidate(os.Args[2:])
	case "generate", "gen", "g":
		cmdGenerate(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bin2json

Usage:
  bin2json <command> [options] <files>...

Commands:
  decode      Decode a binary file against a schema, printing JSON
  encode      Encode a JSON value against a schema, printing bytes
  validate    Validate schema files
  generate    Generate native Go struct declarations from schema files
  help        Print this help message

Run 'bin2json <command> -h' for command-specific help.`)
}

func loadSchema(path string) (*schema.Type, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	var ty schema.Type
	if err := json.Unmarshal(data, &ty); err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", path, err)
	}
	return &ty, nil
}

func cmdDecode(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "Schema file (required)")
	convert := fs.Bool("convert", true, "Apply schema converters on read")

	fs.Usage = func() {
		fmt.Println(`Usage: bin2json decode -schema <schema-file> <bytes-file>

Decode a binary file against a schema and print its JSON value.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *schemaPath == "" || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: -schema and exactly one bytes-file are required")
		fs.Usage()
		os.Exit(1)
	}

	ty, err := loadSchema(*schemaPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading input:", err)
		os.Exit(1)
	}

	var v value.Value
	var rest []byte
	if *convert {
		v, rest, err = engine.ReadAndConvert(ty, data, engine.DefaultOptions)
	} else {
		v, rest, err = engine.Read(ty, data, engine.DefaultOptions)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error decoding:", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error rendering JSON:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	if len(rest) > 0 {
		fmt.Fprintf(os.Stderr, "%d trailing byte(s) were not consumed\n", len(rest))
	}
}

func cmdEncode(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "Schema file (required)")
	convert := fs.Bool("convert", true, "Apply schema converters on write")

	fs.Usage = func() {
		fmt.Println(`Usage: bin2json encode -schema <schema-file> <json-file>

Encode a JSON value against a schema, writing bytes to stdout.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *schemaPath == "" || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: -schema and exactly one json-file are required")
		fs.Usage()
		os.Exit(1)
	}

	ty, err := loadSchema(*schemaPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading input:", err)
		os.Exit(1)
	}

	var v value.Value
	if err := json.Unmarshal(data, &v); err != nil {
		fmt.Fprintln(os.Stderr, "Error parsing JSON:", err)
		os.Exit(1)
	}

	var out []byte
	if *convert {
		out, err = engine.ConvertAndWrite(ty, v, engine.DefaultOptions)
	} else {
		out, err = engine.Write(ty, v, engine.DefaultOptions)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error encoding:", err)
		os.Exit(1)
	}

	os.Stdout.Write(out)
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Println(`Usage: bin2json validate <schema-file>...

Validate schema files without decoding or encoding anything.`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		fs.Usage()
		os.Exit(1)
	}

	hasErrors := false
	for _, path := range fs.Args() {
		if _, err := loadSchema(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			hasErrors = true
			continue
		}
		fmt.Printf("Valid: %s\n", path)
	}
	if hasErrors {
		os.Exit(1)
	}
}

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	lang := fs.String("lang", "go", "Target language: go")
	outDir := fs.String("out", ".", "Output directory")
	pkg := fs.String("package", "", "Override package name")
	prefix := fs.String("prefix", "", "Add prefix to all type names")
	suffix := fs.String("suffix", "", "Add suffix to all type names")

	fs.Usage = func() {
		fmt.Println(`Usage: bin2json generate [options] <schema-file>...

Generate native Go struct declarations from schema files.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		fs.Usage()
		os.Exit(1)
	}

	gen, ok := codegen.Get(codegen.Language(*lang))
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unsupported language: %s\n", *lang)
		fmt.Fprintln(os.Stderr, "Supported languages: go")
		os.Exit(1)
	}

	opts := codegen.DefaultOptions()
	if *pkg != "" {
		opts.Package = *pkg
	}
	opts.TypePrefix = *prefix
	opts.TypeSuffix = *suffix

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	hasErrors := false
	for _, inputFile := range fs.Args() {
		ty, err := loadSchema(inputFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			hasErrors = true
			continue
		}

		baseName := filepath.Base(inputFile)
		baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
		outputFile := filepath.Join(*outDir, baseName+gen.FileExtension())

		f, err := os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			hasErrors = true
			continue
		}

		if err := gen.Generate(f, baseName, ty, opts); err != nil {
			f.Close()
			os.Remove(outputFile)
			fmt.Fprintf(os.Stderr, "Error generating code: %v\n", err)
			hasErrors = true
			continue
		}

		f.Close()
		fmt.Printf("Generated: %s\n", outputFile)
	}

	if hasErrors {
		os.Exit(1)
	}
}
