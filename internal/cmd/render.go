package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/naqd/naqd/internal/api/objects"
	"github.com/naqd/naqd/internal/models"
	"github.com/naqd/naqd/internal/thread"
)

const anonymous = "مجهول"

func author(name *string, isAnonymous bool) string {
	if isAnonymous || name == nil || *name == "" {
		return anonymous
	}
	return *name
}

func mark(mine bool) string {
	if mine {
		return "* "
	}
	return "  "
}

func stamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// flattenComments turns the nested comments of a post back into rows. The
// server may have folded deep replies under a shallower ancestor; each row
// still names its real parent.
func flattenComments(nodes []*objects.CommentObject) []models.Comment {
	var out []models.Comment
	stack := make([]*objects.CommentObject, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, nodes[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		out = append(out, models.Comment{
			ID:              n.ID,
			PostID:          n.PostID,
			ParentCommentID: n.ParentCommentID,
			Content:         n.Content,
			AuthorName:      n.AuthorName,
			IsAnonymous:     n.IsAnonymous,
			CreatedAt:       n.CreatedAt,
		})
		for i := len(n.Replies) - 1; i >= 0; i-- {
			stack = append(stack, n.Replies[i])
		}
	}
	return out
}

// renderThread writes the comment forest indented by depth, capped at maxDepth
func renderThread(w io.Writer, roots []*thread.Node, maxDepth int, mine func(id string) bool) {
	thread.Walk(roots, maxDepth, func(n *thread.Node, depth int) bool {
		indent := strings.Repeat("    ", depth)
		c := n.Comment
		fmt.Fprintf(w, "%s%s%s · %s  [%s]\n", indent, mark(mine(c.ID)), author(c.AuthorName, c.IsAnonymous), stamp(c.CreatedAt), c.ID)
		for _, line := range strings.Split(strings.TrimRight(c.Content, "\n"), "\n") {
			fmt.Fprintf(w, "%s    %s\n", indent, line)
		}
		return true
	})
}
