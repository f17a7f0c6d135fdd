// Package objects holds the JSON shapes returned by the forum API and the
// conversions from database models into them.
package objects

import (
	"time"

	"github.com/naqd/naqd/internal/models"
)

// PostObject is a post as returned to clients
type PostObject struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	AuthorName     *string   `json:"author_name"`
	IsAnonymous    bool      `json:"is_anonymous"`
	CriticismLevel string    `json:"criticism_level"`
	CreatedAt      time.Time `json:"created_at"`
	CreatedByMe    bool      `json:"created_by_me"`
}

// PostSummaryObject is a home page entry
type PostSummaryObject struct {
	PostObject
	CommentCount int64 `json:"comment_count"`
}

// PostDetail is a post together with its comment tree
type PostDetail struct {
	Post         PostObject       `json:"post"`
	Comments     []*CommentObject `json:"comments"`
	CommentCount int              `json:"comment_count"`
}

// NewPost converts a post model
func NewPost(p *models.Post) PostObject {
	return PostObject{
		ID:             p.ID,
		Title:          p.Title,
		Content:        p.Content,
		AuthorName:     p.AuthorName,
		IsAnonymous:    p.IsAnonymous,
		CriticismLevel: string(p.CriticismLevel),
		CreatedAt:      p.CreatedAt,
	}
}

// NewPostSummaries converts the home page listing, keeping its order
func NewPostSummaries(posts []models.PostSummary) []PostSummaryObject {
	out := make([]PostSummaryObject, 0, len(posts))
	for i := range posts {
		out = append(out, PostSummaryObject{
			PostObject:   NewPost(&posts[i].Post),
			CommentCount: posts[i].CommentCount,
		})
	}
	return out
}
