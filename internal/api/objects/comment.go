package objects

import (
	"time"

	"github.com/naqd/naqd/internal/models"
	"github.com/naqd/naqd/internal/thread"
)

// CommentObject is a comment with its replies
type CommentObject struct {
	ID              string           `json:"id"`
	PostID          string           `json:"post_id"`
	ParentCommentID *string          `json:"parent_comment_id"`
	Content         string           `json:"content"`
	AuthorName      *string          `json:"author_name"`
	IsAnonymous     bool             `json:"is_anonymous"`
	CreatedAt       time.Time        `json:"created_at"`
	CreatedByMe     bool             `json:"created_by_me"`
	Replies         []*CommentObject `json:"replies"`
}

// PostRefObject names the post a comment belongs to
type PostRefObject struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// LatestCommentObject is an entry of the latest comments feed
type LatestCommentObject struct {
	ID          string        `json:"id"`
	Content     string        `json:"content"`
	AuthorName  *string       `json:"author_name"`
	IsAnonymous bool          `json:"is_anonymous"`
	CreatedAt   time.Time     `json:"created_at"`
	CreatedByMe bool          `json:"created_by_me"`
	Post        PostRefObject `json:"post"`
}

// NewComment converts a comment model without its replies
func NewComment(c *models.Comment) *CommentObject {
	return &CommentObject{
		ID:              c.ID,
		PostID:          c.PostID,
		ParentCommentID: c.ParentCommentID,
		Content:         c.Content,
		AuthorName:      c.AuthorName,
		IsAnonymous:     c.IsAnonymous,
		CreatedAt:       c.CreatedAt,
		Replies:         []*CommentObject{},
	}
}

// NewLatestComments converts the latest comments feed
func NewLatestComments(comments []models.LatestComment) []LatestCommentObject {
	out := make([]LatestCommentObject, 0, len(comments))
	for _, c := range comments {
		out = append(out, LatestCommentObject{
			ID:          c.ID,
			Content:     c.Content,
			AuthorName:  c.AuthorName,
			IsAnonymous: c.IsAnonymous,
			CreatedAt:   c.CreatedAt,
			Post:        PostRefObject{ID: c.Post.ID, Title: c.Post.Title},
		})
	}
	return out
}

// NewCommentTree converts a comment forest. Nesting is capped at maxDepth
// levels of replies: deeper replies are attached to their ancestor at the
// last allowed level, in thread order. mine marks the caller's comments.
func NewCommentTree(roots []*thread.Node, maxDepth int, mine func(id string) bool) []*CommentObject {
	out := []*CommentObject{}
	var path []*CommentObject

	thread.Walk(roots, maxDepth, func(n *thread.Node, depth int) bool {
		obj := NewComment(&n.Comment)
		if mine != nil {
			obj.CreatedByMe = mine(obj.ID)
		}

		if depth == 0 {
			out = append(out, obj)
		} else {
			parent := path[depth-1]
			parent.Replies = append(parent.Replies, obj)
		}
		path = append(path[:depth], obj)
		return true
	})

	return out
}
