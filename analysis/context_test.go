package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/convextypes"
	"github.com/rlch/convextypes/analysis"
)

func TestTypeContext_Path(t *testing.T) {
	t.Parallel()

	ctx := analysis.NewTypeContext("users", "profile")
	assert.Equal(t, "users.profile", ctx.Path())

	pop := ctx.Push(analysis.SegInner)
	assert.Equal(t, "users.profile.inner", ctx.Path())

	popVariant := ctx.Push(analysis.VariantSegment(2))
	assert.Equal(t, "users.profile.inner.variant_2", ctx.Path())

	popVariant()
	pop()
	assert.Equal(t, "users.profile", ctx.Path())
}

func TestTypeContext_EnterObject(t *testing.T) {
	t.Parallel()

	ctx := analysis.NewTypeContext("t", "c")

	leave, err := ctx.EnterObject()
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.Depth())

	pop := ctx.Push("nested")

	leaveNested, err := ctx.EnterObject()
	require.NoError(t, err)
	assert.Equal(t, 2, ctx.Depth())

	leaveNested()
	pop()

	// Re-entering the same path while it is open is a cycle.
	_, err = ctx.EnterObject()
	require.ErrorIs(t, err, convextypes.ErrCircularReference)

	var cycle *convextypes.CircularReferenceError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"t.c.object", "t.c.object"}, cycle.Path)

	leave()
	assert.Equal(t, 0, ctx.Depth())

	leave, err = ctx.EnterObject()
	require.NoError(t, err)
	leave()
}

func TestTypeContext_SiblingObjects(t *testing.T) {
	t.Parallel()

	ctx := analysis.NewTypeContext("t", "c")

	for _, field := range []string{"a", "b", "a"} {
		pop := ctx.Push(field)

		leave, err := ctx.EnterObject()
		require.NoError(t, err, field)

		leave()
		pop()
	}

	assert.Equal(t, 0, ctx.Depth())
}
