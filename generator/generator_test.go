package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardanlabs/ffi-declgen/parser"
	"github.com/ardanlabs/ffi-declgen/translate"
)

func TestGenerateVoidFunction(t *testing.T) {
	decls := []*translate.Decl{
		{Name: "tick", Return: translate.Void{}},
	}

	want := "extern {\n" +
		"    fn tick();\n" +
		"}\n"
	assert.Equal(t, want, New(decls).Generate())
}

func TestGenerateReturnArrow(t *testing.T) {
	decls := []*translate.Decl{
		{
			Name:   "add",
			Return: translate.Int{Width: translate.WidthInt, Signed: true},
			Params: []translate.Param{
				{Name: "a", Type: translate.Int{Width: translate.WidthInt, Signed: true}},
				{Name: "b", Type: translate.Int{Width: translate.WidthInt, Signed: true}},
			},
		},
	}

	want := "extern {\n" +
		"    fn add(a: c_int, b: c_int) -> c_int;\n" +
		"}\n"
	assert.Equal(t, want, New(decls).Generate())
}

func TestGenerateMultipleDeclarationsInOrder(t *testing.T) {
	decls := []*translate.Decl{
		{Name: "first", Return: translate.Void{}},
		{
			Name:   "second",
			Return: translate.Float{Bits: 64},
			Params: []translate.Param{
				{Name: "x", Type: translate.Float{Bits: 64}},
			},
		},
	}

	want := "extern {\n" +
		"    fn first();\n" +
		"    fn second(x: f64) -> f64;\n" +
		"}\n"
	assert.Equal(t, want, New(decls).Generate())
}

func TestGenerateEmpty(t *testing.T) {
	assert.Equal(t, "", New(nil).Generate())
	assert.Equal(t, "", New([]*translate.Decl{}).Generate())
}

func TestGenerateGolden(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("..", "testdata", "math.h"))
	require.NoError(t, err)

	tu, err := parser.Parse("math.h", string(src), nil)
	require.NoError(t, err)
	require.Empty(t, tu.Diagnostics())

	decls, err := translate.NewCollector().Collect(tu)
	require.NoError(t, err)

	want, err := os.ReadFile(filepath.Join("..", "testdata", "out", "math.ffi"))
	require.NoError(t, err)

	assert.Equal(t, string(want), New(decls).Generate())
}
