// SPDX-License-Identifier: Apache-2.0
package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopologicalOrderConsumerBeforeDependency(t *testing.T) {
	g := NewGraph()
	g.AddNode(&Node{ID: "app"})
	g.AddNode(&Node{ID: "lib-a"})
	g.AddNode(&Node{ID: "lib-b"})
	g.AddDependency("app", "lib-a")
	g.AddDependency("app", "lib-b")
	g.AddDependency("lib-a", "lib-b")

	order, err := g.TopologicalOrder()
	require.NoError(t, err)

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos["app"], pos["lib-a"])
	assert.Less(t, pos["lib-a"], pos["lib-b"])
}

func TestReverseTopologicalOrderDependencyFirst(t *testing.T) {
	g := NewGraph()
	g.AddNode(&Node{ID: "app"})
	g.AddNode(&Node{ID: "lib-a"})
	g.AddDependency("app", "lib-a")

	order, err := g.ReverseTopologicalOrder()
	require.NoError(t, err)
	require.Equal(t, []string{"lib-a", "app"}, order)
}

func TestTopologicalOrderDetectsCycle(t *testing.T) {
	g := NewGraph()
	g.AddNode(&Node{ID: "a"})
	g.AddNode(&Node{ID: "b"})
	g.AddDependency("a", "b")
	g.AddDependency("b", "a")

	_, err := g.TopologicalOrder()
	require.Error(t, err)
}

func TestTopologicalOrderIsDeterministic(t *testing.T) {
	build := func() *Graph {
		g := NewGraph()
		for _, id := range []string{"c", "a", "b", "d"} {
			g.AddNode(&Node{ID: id})
		}
		g.AddDependency("a", "d")
		g.AddDependency("b", "d")
		g.AddDependency("c", "d")
		return g
	}

	first, err := build().TopologicalOrder()
	require.NoError(t, err)
	second, err := build().TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "b", "c", "d"}, first)
}
