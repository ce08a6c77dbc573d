package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sflynlang/sflync/internal/position"
	"github.com/sflynlang/sflync/internal/types"
)

type fakeValue string

func (f fakeValue) ValueString() string { return string(f) }

func TestBuiltinsAreAlwaysDefined(t *testing.T) {
	s := NewStore()
	assert.True(t, s.HasValue("print"))
	assert.True(t, s.HasType("debug"))
	assert.False(t, s.HasValue("nonexistent"))
}

func TestChildScopeSeesParentButNotViceVersa(t *testing.T) {
	root := NewStore()
	root.AddValue("x", fakeValue("root"))
	child := root.Child()
	v, ok := child.GetValue("x")
	require.True(t, ok)
	assert.Equal(t, "root", v.ValueString())

	child.AddValue("y", fakeValue("child-only"))
	assert.False(t, root.HasValue("y"))
}

func TestLocalShadowingDoesNotCollideWithOuterName(t *testing.T) {
	root := NewStore()
	root.AddType("n", types.TNumber, position.Position{})
	child := root.Child()
	// Re-declaring "n" in a nested scope is ordinary shadowing, not a
	// collision: HasTypeLocal only looks at the child's own frame.
	assert.False(t, child.HasTypeLocal("n"))
	child.AddType("n", types.TString, position.Position{})
	assert.True(t, child.HasTypeLocal("n"))

	got, ok := child.GetType("n")
	require.True(t, ok)
	assert.True(t, got.Equal(types.TString), "child's binding should shadow the parent's")

	parentGot, ok := root.GetType("n")
	require.True(t, ok)
	assert.True(t, parentGot.Equal(types.TNumber), "parent's binding must be unaffected")
}

func TestSetValueReachesTheDefiningFrame(t *testing.T) {
	root := NewStore()
	root.AddValueDecl("x", fakeValue("first"), true)
	child := root.Child()

	ok := child.SetValue("x", fakeValue("second"))
	require.True(t, ok)

	v, _ := root.GetValue("x")
	assert.Equal(t, "second", v.ValueString(), "assignment through a child scope must mutate the owning frame")

	v, _ = child.GetValue("x")
	assert.Equal(t, "second", v.ValueString())
}

func TestSetValueFailsOnUnboundName(t *testing.T) {
	s := NewStore()
	assert.False(t, s.SetValue("never-bound", fakeValue("x")))
}

func TestIsMutableTracksDeclarationKind(t *testing.T) {
	s := NewStore()
	s.AddValueDecl("mut", fakeValue("v"), true)
	s.AddValueDecl("immut", fakeValue("v"), false)
	assert.True(t, s.IsMutable("mut"))
	assert.False(t, s.IsMutable("immut"))
}

func TestCloneIsIndependentOfItsSource(t *testing.T) {
	root := NewStore()
	root.AddValueDecl("x", fakeValue("one"), true)
	clone := root.Clone()

	clone.SetValue("x", fakeValue("two"))

	v, _ := root.GetValue("x")
	assert.Equal(t, "one", v.ValueString(), "mutating a clone must not affect the source Store")

	cv, _ := clone.GetValue("x")
	assert.Equal(t, "two", cv.ValueString())
}

func TestEnvironmentAccumulatesErrorsWithoutAborting(t *testing.T) {
	e := New(false)
	assert.False(t, e.HasErrors())
	e.AddError(nil)
	assert.True(t, e.HasErrors())
	assert.Len(t, e.Errors(), 1)
}
