package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	Register(NewGoGenerator())
	gen, ok := Get(LanguageGo)
	require.True(t, ok)
	require.Equal(t, LanguageGo, gen.Language())
}

func TestGetUnknownLanguage(t *testing.T) {
	_, ok := Get(Language("rust"))
	require.False(t, ok)
}

func TestLanguagesIncludesGo(t *testing.T) {
	Register(NewGoGenerator())
	langs := Languages()
	require.Contains(t, langs, LanguageGo)
}

func TestToPascalCase(t *testing.T) {
	require.Equal(t, "UserId", ToPascalCase("user_ID"))
	require.Equal(t, "HeaderLength", ToPascalCase("header-length"))
	require.Equal(t, "Simple", ToPascalCase("simple"))
}

func TestToCamelCase(t *testing.T) {
	require.Equal(t, "userId", ToCamelCase("user_id"))
	require.Equal(t, "", ToCamelCase(""))
}

func TestToSnakeCase(t *testing.T) {
	require.Equal(t, "user_id", ToSnakeCase("UserID"))
	require.Equal(t, "header_length", ToSnakeCase("HeaderLength"))
}

func TestIndent(t *testing.T) {
	got := Indent("a\nb\n\nc", 1)
	require.Equal(t, "\ta\n\tb\n\n\tc", got)
}

func TestGoComment(t *testing.T) {
	require.Equal(t, "", GoComment(""))
	require.Equal(t, "// one\n// two", GoComment("one\ntwo"))
}

func TestGeneratorErrorMessage(t *testing.T) {
	err := &GeneratorError{Message: "unsupported", Path: []string{"a", "b"}}
	require.Equal(t, "codegen: a.b: unsupported", err.Error())

	bare := &GeneratorError{Message: "unsupported"}
	require.Equal(t, "codegen: unsupported", bare.Error())
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	require.Equal(t, "schemas", opts.Package)
	require.True(t, opts.GenerateComments)
}
