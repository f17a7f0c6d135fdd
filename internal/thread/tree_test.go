package thread

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naqd/naqd/internal/models"
)

func c(id string, parent string) models.Comment {
	com := models.Comment{ID: id, PostID: "p1", Content: "content " + id}
	if parent != "" {
		com.ParentCommentID = &parent
	}
	return com
}

func ids(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Comment.ID)
	}
	return out
}

func TestBuild_DanglingParentBecomesRoot(t *testing.T) {
	roots := Build([]models.Comment{c("A", ""), c("B", "A"), c("C", "Z")})

	require.Equal(t, []string{"A", "C"}, ids(roots))
	assert.Equal(t, []string{"B"}, ids(roots[0].Children))
	assert.Empty(t, roots[1].Children)
}

func TestBuild_Empty(t *testing.T) {
	roots := Build(nil)
	assert.NotNil(t, roots)
	assert.Empty(t, roots)
	assert.Empty(t, Cycles(nil))
}

func TestBuild_SiblingOrderFollowsInput(t *testing.T) {
	tests := []struct {
		name     string
		input    []models.Comment
		roots    []string
		children map[string][]string
	}{
		{
			name:  "ids descending",
			input: []models.Comment{c("z", ""), c("y", ""), c("x", "z"), c("w", "z")},
			roots: []string{"z", "y"},
			children: map[string][]string{
				"z": {"x", "w"},
			},
		},
		{
			name:  "reply listed before its parent",
			input: []models.Comment{c("r2", "p"), c("p", ""), c("r1", "p")},
			roots: []string{"p"},
			children: map[string][]string{
				"p": {"r2", "r1"},
			},
		},
		{
			name:  "deep nesting",
			input: []models.Comment{c("1", ""), c("2", "1"), c("3", "2"), c("4", "3"), c("5", "1")},
			roots: []string{"1"},
			children: map[string][]string{
				"1": {"2", "5"},
				"2": {"3"},
				"3": {"4"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roots := Build(tt.input)
			assert.Equal(t, tt.roots, ids(roots))

			Walk(roots, 0, func(n *Node, _ int) bool {
				want := tt.children[n.Comment.ID]
				if len(want) == 0 {
					assert.Empty(t, n.Children, "node %s", n.Comment.ID)
				} else {
					assert.Equal(t, want, ids(n.Children), "children of %s", n.Comment.ID)
				}
				return true
			})
		})
	}
}

func TestBuild_PreservesEveryComment(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := rng.Intn(60)
		input := make([]models.Comment, 0, n)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("c%d", rng.Intn(n+5))
			parent := ""
			switch rng.Intn(4) {
			case 0:
			case 1:
				parent = "missing"
			default:
				parent = fmt.Sprintf("c%d", rng.Intn(n+5))
			}
			input = append(input, c(id, parent))
		}

		roots := Build(input)
		require.Equal(t, len(input), Count(roots), "round %d", round)

		seen := make(map[*Node]bool)
		Walk(roots, 0, func(node *Node, _ int) bool {
			seen[node] = true
			return true
		})
		require.Len(t, seen, len(input), "round %d", round)
	}
}

func TestBuild_BreaksCycles(t *testing.T) {
	tests := []struct {
		name     string
		input    []models.Comment
		roots    []string
		promoted []string
	}{
		{
			name:     "self parent",
			input:    []models.Comment{c("A", "A")},
			roots:    []string{"A"},
			promoted: []string{"A"},
		},
		{
			name:     "two cycle with a normal root",
			input:    []models.Comment{c("R", ""), c("X", "Y"), c("Y", "X")},
			roots:    []string{"R", "X"},
			promoted: []string{"X"},
		},
		{
			name:     "descendant of a cycle listed first",
			input:    []models.Comment{c("D", "B"), c("B", "C"), c("C", "B")},
			roots:    []string{"B"},
			promoted: []string{"B"},
		},
		{
			name:     "two independent cycles",
			input:    []models.Comment{c("a", "b"), c("b", "a"), c("x", "y"), c("y", "z"), c("z", "x")},
			roots:    []string{"a", "x"},
			promoted: []string{"a", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roots := Build(tt.input)
			assert.Equal(t, tt.roots, ids(roots))
			assert.Equal(t, len(tt.input), Count(roots))
			assert.Equal(t, tt.promoted, Cycles(tt.input))

			together, promoted := BuildWithCycles(tt.input)
			assert.Equal(t, tt.roots, ids(together))
			assert.Equal(t, tt.promoted, promoted)
		})
	}
}

func TestBuild_CycleKeepsRemainingLinks(t *testing.T) {
	roots := Build([]models.Comment{c("D", "B"), c("B", "C"), c("C", "B")})

	require.Len(t, roots, 1)
	b := roots[0]
	assert.Equal(t, []string{"D", "C"}, ids(b.Children))
}

func TestBuild_DuplicateIDs(t *testing.T) {
	input := []models.Comment{c("A", ""), c("A", ""), c("B", "A")}
	roots := Build(input)

	require.Equal(t, []string{"A", "A"}, ids(roots))
	assert.Equal(t, []string{"B"}, ids(roots[0].Children), "first occurrence owns the id")
	assert.Empty(t, roots[1].Children)
	assert.Equal(t, 3, Count(roots))
}

func TestBuild_NilParentAndMissingParentKeepInputOrder(t *testing.T) {
	roots := Build([]models.Comment{c("orphan", "gone"), c("top", ""), c("orphan2", "gone")})
	assert.Equal(t, []string{"orphan", "top", "orphan2"}, ids(roots))
}
