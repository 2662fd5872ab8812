package skeleton

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"npk-mesh/internal/mesh"
)

// ErrCycle is returned when parent links loop back on themselves. The
// format does not forbid this, so callers must not assume a tree.
var ErrCycle = errors.New("skeleton: parent cycle")

// Hierarchy is the parent/child view of a decoded bone list.
type Hierarchy struct {
	Roots    []int
	Children [][]int
	parents  []int32
}

// Build indexes the bone list. Parents outside the list are treated as roots.
func Build(bones []mesh.Bone) *Hierarchy {
	h := &Hierarchy{
		Children: make([][]int, len(bones)),
		parents:  make([]int32, len(bones)),
	}
	for i, b := range bones {
		p := b.Parent
		if p < 0 || int(p) >= len(bones) || int(p) == i {
			p = mesh.NoParent
		}
		h.parents[i] = p
		if p == mesh.NoParent {
			h.Roots = append(h.Roots, i)
		} else {
			h.Children[p] = append(h.Children[p], i)
		}
	}
	return h
}

// Walk visits every bone reachable from the roots depth-first, parents
// before children. Returning false from fn skips that bone's subtree.
// Bones caught in a cycle are unreachable; Walk reports them with ErrCycle
// after visiting everything else.
func (h *Hierarchy) Walk(fn func(index, depth int) bool) error {
	seen := make([]bool, len(h.parents))
	var visit func(i, depth int)
	visit = func(i, depth int) {
		if seen[i] {
			return
		}
		seen[i] = true
		if !fn(i, depth) {
			return
		}
		for _, c := range h.Children[i] {
			visit(c, depth+1)
		}
	}
	for _, r := range h.Roots {
		visit(r, 0)
	}

	for i, ok := range seen {
		if !ok && !h.inSkipped(i, seen) {
			return fmt.Errorf("%w: bone %d", ErrCycle, i)
		}
	}
	return nil
}

// inSkipped reports whether bone i hangs below a visited ancestor, i.e.
// it was left out because fn pruned a subtree rather than by a cycle.
func (h *Hierarchy) inSkipped(i int, seen []bool) bool {
	for steps := 0; steps < len(h.parents); steps++ {
		p := h.parents[i]
		if p == mesh.NoParent {
			return true
		}
		if seen[p] {
			return true
		}
		i = int(p)
	}
	return false
}

// Depth returns the number of ancestors of bone i.
func (h *Hierarchy) Depth(i int) (int, error) {
	depth := 0
	for p := h.parents[i]; p != mesh.NoParent; p = h.parents[p] {
		depth++
		if depth > len(h.parents) {
			return 0, fmt.Errorf("%w: bone %d", ErrCycle, i)
		}
	}
	return depth, nil
}

// BindPositions returns the translation part of each bind matrix. The
// matrices follow the row-vector convention, so translation sits in row 3.
func BindPositions(bones []mesh.Bone) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(bones))
	for i, b := range bones {
		out[i] = b.Bind.Row(3).Vec3()
	}
	return out
}
