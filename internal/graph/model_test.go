package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgeType_Inverse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, EdgeChild, EdgeParent.Inverse())
	assert.Equal(t, EdgeParent, EdgeChild.Inverse())
	assert.Equal(t, EdgeSpouse, EdgeSpouse.Inverse())
	assert.Equal(t, EdgeSibling, EdgeSibling.Inverse())
}

func TestNode_SortedAccessors(t *testing.T) {
	t.Parallel()

	g := New()
	n := g.EnsureNode("me")
	for _, id := range []string{"zoe", "amy", "mia"} {
		assert.NoError(t, g.AddParent("me", id))
	}

	assert.Equal(t, []string{"amy", "mia", "zoe"}, n.Parents())
	assert.Nil(t, n.Children())
}
