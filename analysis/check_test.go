package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/convextypes"
	"github.com/rlch/convextypes/analysis"
)

func TestCheckType(t *testing.T) {
	t.Parallel()

	selfUnion := convextypes.UnionOf(convextypes.Scalar(convextypes.TagString))
	selfUnion.Variants = append(selfUnion.Variants, selfUnion)

	selfObject := convextypes.ObjectOf()
	selfObject.Fields = append(selfObject.Fields, convextypes.FieldOf("self", convextypes.OptionalOf(selfObject)))

	shared := convextypes.Scalar(convextypes.TagString)

	tests := []struct {
		name   string
		node   *convextypes.TypeNode
		target error
	}{
		{
			name: "scalar",
			node: convextypes.Scalar(convextypes.TagNumber),
		},
		{
			name: "nested",
			node: convextypes.ArrayOf(convextypes.ObjectOf(
				convextypes.FieldOf("a", convextypes.RecordOf(convextypes.Scalar(convextypes.TagString), convextypes.Scalar(convextypes.TagAny))),
				convextypes.FieldOf("b", convextypes.OptionalOf(convextypes.StringLiteral("x"))),
			)),
		},
		{
			name: "shared leaf is not a cycle",
			node: convextypes.UnionOf(shared, convextypes.ArrayOf(shared)),
		},
		{
			name: "partial types",
			node: convextypes.UnionOf(convextypes.ArrayOf(nil), convextypes.RecordOf(nil, nil), convextypes.LiteralOf(nil)),
		},
		{
			name:   "unknown tag",
			node:   convextypes.Scalar("float"),
			target: convextypes.ErrInvalidType,
		},
		{
			name:   "optional without inner",
			node:   convextypes.OptionalOf(nil),
			target: convextypes.ErrInvalidSchema,
		},
		{
			name:   "unnamed field",
			node:   convextypes.ObjectOf(convextypes.FieldOf("", convextypes.Scalar(convextypes.TagNull))),
			target: convextypes.ErrInvalidSchema,
		},
		{
			name:   "union containing itself",
			node:   selfUnion,
			target: convextypes.ErrCircularReference,
		},
		{
			name:   "object containing itself",
			node:   selfObject,
			target: convextypes.ErrCircularReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := analysis.CheckType(tt.node, "t", "c")
			if tt.target == nil {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestCheckType_CyclePath(t *testing.T) {
	t.Parallel()

	node := convextypes.ObjectOf()
	node.Fields = append(node.Fields, convextypes.FieldOf("next", node))

	var cycle *convextypes.CircularReferenceError
	require.ErrorAs(t, analysis.CheckType(node, "list", "head"), &cycle)
	assert.Equal(t, []string{"list.head", "list.head.next"}, cycle.Path)
	assert.Contains(t, cycle.Error(), "list.head -> list.head.next")
}
