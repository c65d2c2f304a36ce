package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectStructure_TransitionIsShared(t *testing.T) {
	root := RootStructure()
	s1 := root.Transition("x")
	s2 := root.Transition("x")
	assert.Same(t, s1, s2, "two objects adding the same property in the same order converge on one shape")
}

func TestObjectStructure_DistinctOrderDiverges(t *testing.T) {
	root := RootStructure()
	xy := root.Transition("x").Transition("y")
	yx := root.Transition("y").Transition("x")
	assert.NotSame(t, xy, yx)
}

func TestObjectStructure_IndexOf(t *testing.T) {
	s := RootStructure().Transition("a").Transition("b")
	idx, ok := s.IndexOf("b")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = s.IndexOf("missing")
	assert.False(t, ok)
}
