package codegen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZB94/bin2json/pkg/checksum"
	"github.com/ZB94/bin2json/pkg/keyrange"
	"github.com/ZB94/bin2json/pkg/schema"
)

func TestGoGeneratorRejectsNonStructRoot(t *testing.T) {
	gen := NewGoGenerator()
	var buf bytes.Buffer
	err := gen.Generate(&buf, "Packet", schema.Uint8Type(schema.BigEndian()), DefaultOptions())
	require.Error(t, err)
	var gerr *GeneratorError
	require.ErrorAs(t, err, &gerr)
}

func TestGoGeneratorFlatStruct(t *testing.T) {
	ty := schema.StructType([]schema.Field{
		{Name: "id", Type: schema.Uint32Type(schema.BigEndian())},
		{Name: "name", Type: schema.StringType(fixedSize(8))},
		{Name: "active", Type: schema.BooleanType(false)},
	}, nil)

	gen := NewGoGenerator()
	var buf bytes.Buffer
	err := gen.Generate(&buf, "packet", ty, DefaultOptions())
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "package schemas")
	require.Contains(t, out, "type Packet struct")
	require.Contains(t, out, "Id uint32 `bin2json:\"id\"`")
	require.Contains(t, out, "Name string `bin2json:\"name\"`")
	require.Contains(t, out, "Active bool `bin2json:\"active\"`")
}

func fixedSize(n int) *schema.BytesSize {
	s := schema.FixedSize(n)
	return &s
}

func TestGoGeneratorSkipsMagicChecksumSign(t *testing.T) {
	ty := schema.StructType([]schema.Field{
		{Name: "magic", Type: schema.MagicType([]byte{0xCA, 0xFE})},
		{Name: "len", Type: schema.Uint8Type(schema.BigEndian())},
		{Name: "sum", Type: schema.ChecksumType(checksum.Xor, "len", "sum")},
	}, nil)

	gen := NewGoGenerator()
	var buf bytes.Buffer
	err := gen.Generate(&buf, "frame", ty, DefaultOptions())
	require.NoError(t, err)

	out := buf.String()
	require.NotContains(t, out, "Magic")
	require.NotContains(t, out, "Sum")
	require.Contains(t, out, "Len uint8")
}

func TestGoGeneratorNestedStruct(t *testing.T) {
	inner := schema.StructType([]schema.Field{
		{Name: "x", Type: schema.Int32Type(schema.BigEndian())},
		{Name: "y", Type: schema.Int32Type(schema.BigEndian())},
	}, nil)
	ty := schema.StructType([]schema.Field{
		{Name: "point", Type: inner},
	}, nil)

	gen := NewGoGenerator()
	var buf bytes.Buffer
	err := gen.Generate(&buf, "shape", ty, DefaultOptions())
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "type Shape struct")
	require.Contains(t, out, "type ShapePoint struct")
	require.Contains(t, out, "Point ShapePoint")
}

func TestGoGeneratorArrayOfStruct(t *testing.T) {
	item := schema.StructType([]schema.Field{
		{Name: "value", Type: schema.Uint8Type(schema.BigEndian())},
	}, nil)
	length := schema.FixedLength(4)
	ty := schema.StructType([]schema.Field{
		{Name: "items", Type: schema.ArrayType(item, &length, nil)},
	}, nil)

	gen := NewGoGenerator()
	var buf bytes.Buffer
	err := gen.Generate(&buf, "list", ty, DefaultOptions())
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "Items []ListItemsItem")
	require.Contains(t, out, "type ListItemsItem struct")
}

func TestGoGeneratorEnumFieldIsAny(t *testing.T) {
	m := keyrange.New[*schema.Type]()
	m.Insert(keyrange.NewValue(0), schema.Uint8Type(schema.BigEndian()))
	ty := schema.StructType([]schema.Field{
		{Name: "kind", Type: schema.Uint8Type(schema.BigEndian())},
		{Name: "payload", Type: schema.EnumType("kind", m, nil)},
	}, nil)

	gen := NewGoGenerator()
	var buf bytes.Buffer
	err := gen.Generate(&buf, "msg", ty, DefaultOptions())
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Payload any")
}

func TestGoGeneratorTypePrefixSuffixAndPackage(t *testing.T) {
	ty := schema.StructType([]schema.Field{
		{Name: "a", Type: schema.Uint8Type(schema.BigEndian())},
	}, nil)

	opts := Options{Package: "wire", TypePrefix: "P", TypeSuffix: "DTO"}
	gen := NewGoGenerator()
	var buf bytes.Buffer
	err := gen.Generate(&buf, "frame", ty, opts)
	require.NoError(t, err)

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "// Code generated"))
	require.Contains(t, out, "package wire")
	require.Contains(t, out, "type PFrameDTO struct")
}

func TestGoGeneratorFileExtension(t *testing.T) {
	require.Equal(t, ".go", NewGoGenerator().FileExtension())
}
