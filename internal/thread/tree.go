// Package thread rebuilds reply trees from the flat comment rows of a post.
package thread

import (
	"github.com/naqd/naqd/internal/models"
)

// Node is a comment together with its direct replies, in input order
type Node struct {
	Comment  models.Comment
	Children []*Node
}

// Build turns the flat comments of one post into a forest of reply trees.
//
// Siblings keep their relative input order. A comment whose parent is not in
// the input is placed at the root instead of being dropped. Comments caught in
// a parent cycle are never reachable from a root; for each such cycle the
// member that comes first in the input is promoted to the root so that every
// input comment appears in the output exactly once.
func Build(comments []models.Comment) []*Node {
	roots, _ := build(comments)
	return roots
}

// BuildWithCycles is Build that also returns the ids Cycles would report,
// from a single pass over the input.
func BuildWithCycles(comments []models.Comment) ([]*Node, []string) {
	return build(comments)
}

// Cycles returns the ids of the comments Build had to promote to the root to
// break parent cycles, in promotion order. It is empty for well-formed input.
func Cycles(comments []models.Comment) []string {
	_, promoted := build(comments)
	return promoted
}

func build(comments []models.Comment) ([]*Node, []string) {
	n := len(comments)
	if n == 0 {
		return []*Node{}, nil
	}

	// First pass: id -> position. The first occurrence of a duplicated id
	// owns it; later duplicates are still emitted as nodes of their own.
	index := make(map[string]int, n)
	for i := range comments {
		if _, seen := index[comments[i].ID]; !seen {
			index[comments[i].ID] = i
		}
	}

	// Second pass: attach every comment to its parent, or to the root.
	parent := make([]int, n)
	kids := make([][]int, n)
	var roots []int
	for i := range comments {
		parent[i] = -1
		pid := comments[i].ParentCommentID
		if pid == nil {
			roots = append(roots, i)
			continue
		}
		p, ok := index[*pid]
		if !ok {
			roots = append(roots, i)
			continue
		}
		parent[i] = p
		kids[p] = append(kids[p], i)
	}

	reached := make([]bool, n)
	for _, r := range roots {
		markSubtree(r, kids, reached)
	}

	var promoted []string
	stamp := make([]int, n)
	for i := 0; i < n; i++ {
		if reached[i] {
			continue
		}
		// An unreached comment has a parent chain that never ends at a root,
		// so following it must loop. Find a node on that loop.
		j := i
		for stamp[j] != i+1 {
			stamp[j] = i + 1
			j = parent[j]
		}
		first := j
		for k := parent[j]; k != j; k = parent[k] {
			if k < first {
				first = k
			}
		}

		kids[parent[first]] = without(kids[parent[first]], first)
		parent[first] = -1
		roots = append(roots, first)
		promoted = append(promoted, comments[first].ID)
		markSubtree(first, kids, reached)
	}

	nodes := make([]*Node, n)
	for i := range comments {
		nodes[i] = &Node{Comment: comments[i]}
	}
	for i := range comments {
		if len(kids[i]) == 0 {
			continue
		}
		nodes[i].Children = make([]*Node, 0, len(kids[i]))
		for _, k := range kids[i] {
			nodes[i].Children = append(nodes[i].Children, nodes[k])
		}
	}

	out := make([]*Node, 0, len(roots))
	for _, r := range roots {
		out = append(out, nodes[r])
	}
	return out, promoted
}

func markSubtree(root int, kids [][]int, reached []bool) {
	stack := []int{root}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[top] {
			continue
		}
		reached[top] = true
		stack = append(stack, kids[top]...)
	}
}

func without(list []int, v int) []int {
	for i, x := range list {
		if x == v {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
