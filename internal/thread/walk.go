package thread

// Entry is a node paired with the depth it should be rendered at
type Entry struct {
	Node  *Node
	Depth int
}

// Walk visits the forest depth-first in pre-order, keeping sibling order.
//
// It uses an explicit stack, so arbitrarily deep threads cannot exhaust the
// goroutine stack. When maxDepth is positive, nodes nested deeper than maxDepth
// are reported at maxDepth rather than skipped. A node reachable twice (only
// possible in hand-built forests) is visited once. Returning false from fn
// stops the walk.
func Walk(roots []*Node, maxDepth int, fn func(n *Node, depth int) bool) {
	stack := make([]Entry, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, Entry{Node: roots[i]})
	}

	visited := make(map[*Node]struct{})
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Node == nil {
			continue
		}
		if _, ok := visited[top.Node]; ok {
			continue
		}
		visited[top.Node] = struct{}{}

		depth := top.Depth
		if maxDepth > 0 && depth > maxDepth {
			depth = maxDepth
		}
		if !fn(top.Node, depth) {
			return
		}

		children := top.Node.Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, Entry{Node: children[i], Depth: top.Depth + 1})
		}
	}
}

// Flatten returns the Walk order as a slice
func Flatten(roots []*Node, maxDepth int) []Entry {
	var out []Entry
	Walk(roots, maxDepth, func(n *Node, depth int) bool {
		out = append(out, Entry{Node: n, Depth: depth})
		return true
	})
	return out
}

// Count returns the number of distinct nodes in the forest
func Count(roots []*Node) int {
	count := 0
	Walk(roots, 0, func(*Node, int) bool {
		count++
		return true
	})
	return count
}
