package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScalarEquality(t *testing.T) {
	assert.True(t, TNumber.Equal(TNumber))
	assert.False(t, TNumber.Equal(TString))
	assert.False(t, TNumber.Equal(TBoolean))
}

func TestIdentifierEqualityIsByName(t *testing.T) {
	a := NewIdentifier("Shape")
	b := NewIdentifier("Shape")
	c := NewIdentifier("Other")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestArrayEqualityIsStructural(t *testing.T) {
	a := NewArray(TNumber)
	b := NewArray(TNumber)
	c := NewArray(TString)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestFunctionEqualityComparesArityParamsAndReturn(t *testing.T) {
	a := NewFunction([]Type{TNumber, TString}, TBoolean)
	b := NewFunction([]Type{TNumber, TString}, TBoolean)
	c := NewFunction([]Type{TNumber}, TBoolean)
	d := NewFunction([]Type{TNumber, TString}, TVoid)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "different arity")
	assert.False(t, a.Equal(d), "different return type")
}

func TestHashMapEqualityIsByFieldSet(t *testing.T) {
	a := NewHashMap(map[string]Type{"x": TNumber, "y": TString})
	b := NewHashMap(map[string]Type{"y": TString, "x": TNumber})
	c := NewHashMap(map[string]Type{"x": TNumber})
	d := NewHashMap(map[string]Type{"x": TString, "y": TString})
	assert.True(t, a.Equal(b), "field order shouldn't matter")
	assert.False(t, a.Equal(c), "missing field")
	assert.False(t, a.Equal(d), "mismatched field type")
}

func TestStringIsDeterministicForHashMap(t *testing.T) {
	a := NewHashMap(map[string]Type{"z": TNumber, "a": TString})
	// golang.org/x/exp/maps.Keys doesn't sort; String must, so repeated
	// calls (and repeated runs) render fields in the same order.
	for i := 0; i < 5; i++ {
		assert.Equal(t, "{ a: string, z: number }", a.String())
	}
}

func TestOptionEquality(t *testing.T) {
	a := NewOption(TNumber)
	b := NewOption(TNumber)
	c := NewOption(TString)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestFunctionString(t *testing.T) {
	f := NewFunction([]Type{TNumber, TString}, TBoolean)
	assert.Equal(t, "(number, string) => boolean", f.String())
}
