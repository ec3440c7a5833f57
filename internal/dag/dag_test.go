// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestTopologicalSort_EmptyGraph(t *testing.T) {
	t.Parallel()
	order, err := New().TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestTopologicalSort_LinearChain(t *testing.T) {
	t.Parallel()
	g := New()
	// core <- bar <- clock
	g.AddEdge("core", "bar")
	g.AddEdge("bar", "clock")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"core", "bar", "clock"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestTopologicalSort_Diamond(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("core", "bar")
	g.AddEdge("core", "notify")
	g.AddEdge("bar", "dashboard")
	g.AddEdge("notify", "dashboard")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"core", "bar", "notify", "dashboard"}) {
		t.Errorf("unexpected order %v", order)
	}
}

func TestTopologicalSort_InsertionOrderForIndependentNodes(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddNode("zeta")
	g.AddNode("alpha")
	g.AddNode("mid")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"zeta", "alpha", "mid"}) {
		t.Errorf("expected insertion order, got %v", order)
	}
}

func TestTopologicalSort_Cycles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edges   [][2]string
		minSize int
	}{
		{"self loop", [][2]string{{"a", "a"}}, 1},
		{"two nodes", [][2]string{{"a", "b"}, {"b", "a"}}, 2},
		{"three nodes", [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := New()
			for _, e := range tt.edges {
				g.AddEdge(e[0], e[1])
			}
			_, err := g.TopologicalSort()
			if !errors.Is(err, ErrCycle) {
				t.Fatalf("expected ErrCycle, got %v", err)
			}
			var cycleErr *CycleError
			if !errors.As(err, &cycleErr) {
				t.Fatalf("expected *CycleError, got %T", err)
			}
			if len(cycleErr.Cycle) < tt.minSize {
				t.Errorf("expected at least %d nodes in cycle, got %v", tt.minSize, cycleErr.Cycle)
			}
		})
	}
}

func TestTopologicalSort_CycleExcludesHealthyNodes(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddNode("standalone")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if slices.Contains(cycleErr.Cycle, "standalone") {
		t.Errorf("standalone node reported in cycle: %v", cycleErr.Cycle)
	}
}

func TestAddEdge_DuplicatesIgnored(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("a", "b")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"a", "b"}) {
		t.Errorf("expected [a b], got %v", order)
	}
	if deps := g.Dependencies("b"); !slices.Equal(deps, []string{"a"}) {
		t.Errorf("Dependencies(b) = %v", deps)
	}
}

func TestDependents(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("core", "bar")
	g.AddEdge("bar", "clock")
	g.AddEdge("core", "notify")
	g.AddNode("unrelated")

	got := g.Dependents("core")
	if !slices.Equal(got, []string{"bar", "notify", "clock"}) {
		t.Errorf("Dependents(core) = %v", got)
	}
	if got := g.Dependents("clock"); len(got) != 0 {
		t.Errorf("Dependents(clock) = %v", got)
	}
	if got := g.Dependents("missing"); got != nil {
		t.Errorf("Dependents(missing) = %v", got)
	}
}

func TestDependencies_OnCycleTerminates(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	got := g.Dependencies("a")
	slices.Sort(got)
	if !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("Dependencies(a) = %v", got)
	}
}

func TestNodes(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("x", "y")
	g.AddNode("x")

	if !slices.Equal(g.Nodes(), []string{"x", "y"}) {
		t.Errorf("Nodes() = %v", g.Nodes())
	}
	if !g.HasNode("y") || g.HasNode("z") {
		t.Error("HasNode mismatch")
	}
}

func TestCycleError_Message(t *testing.T) {
	t.Parallel()
	err := &CycleError{Cycle: []string{"a", "b", "c"}}
	expected := "dependency cycle detected: a -> b -> c"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}
