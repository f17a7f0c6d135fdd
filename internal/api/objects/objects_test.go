package objects

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naqd/naqd/internal/models"
	"github.com/naqd/naqd/internal/thread"
)

func strPtr(s string) *string { return &s }

func chain(n int) []models.Comment {
	comments := make([]models.Comment, n)
	for i := range comments {
		comments[i] = models.Comment{ID: string(rune('a' + i)), PostID: "p"}
		if i > 0 {
			comments[i].ParentCommentID = strPtr(comments[i-1].ID)
		}
	}
	return comments
}

func TestNewCommentTree_KeepsShape(t *testing.T) {
	comments := []models.Comment{
		{ID: "a", PostID: "p"},
		{ID: "b", PostID: "p", ParentCommentID: strPtr("a")},
		{ID: "c", PostID: "p"},
		{ID: "d", PostID: "p", ParentCommentID: strPtr("a")},
	}
	mine := func(id string) bool { return id == "d" }

	tree := NewCommentTree(thread.Build(comments), 0, mine)
	require.Len(t, tree, 2)
	assert.Equal(t, "a", tree[0].ID)
	assert.Equal(t, "c", tree[1].ID)
	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, "b", tree[0].Replies[0].ID)
	assert.Equal(t, "d", tree[0].Replies[1].ID)
	assert.True(t, tree[0].Replies[1].CreatedByMe)
	assert.False(t, tree[0].CreatedByMe)
	assert.NotNil(t, tree[1].Replies)
}

func TestNewCommentTree_CapsNesting(t *testing.T) {
	tree := NewCommentTree(thread.Build(chain(5)), 2, nil)

	// a > b > [c, d, e]
	require.Len(t, tree, 1)
	b := tree[0].Replies
	require.Len(t, b, 1)
	assert.Equal(t, "b", b[0].ID)

	var ids []string
	for _, r := range b[0].Replies {
		ids = append(ids, r.ID)
		assert.Empty(t, r.Replies)
	}
	assert.Equal(t, []string{"c", "d", "e"}, ids)
}

func TestNewCommentTree_Empty(t *testing.T) {
	tree := NewCommentTree(thread.Build(nil), 3, nil)
	data, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestPostSummaryJSON(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	summaries := NewPostSummaries([]models.PostSummary{{
		Post: models.Post{
			ID:             "p1",
			Title:          "عنوان",
			Content:        "نص",
			IsAnonymous:    true,
			CriticismLevel: models.CriticismHarsh,
			CreatedAt:      created,
		},
		CommentCount: 4,
	}})

	data, err := json.Marshal(summaries)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"id": "p1",
		"title": "عنوان",
		"content": "نص",
		"author_name": null,
		"is_anonymous": true,
		"criticism_level": "harsh",
		"created_at": "2024-05-01T12:00:00Z",
		"created_by_me": false,
		"comment_count": 4
	}]`, string(data))
}

func TestNewLatestComments(t *testing.T) {
	latest := NewLatestComments([]models.LatestComment{{
		Comment: models.Comment{ID: "c1", PostID: "p1", Content: "جميل"},
		Post:    models.PostRef{ID: "p1", Title: "قصيدة"},
	}})
	require.Len(t, latest, 1)
	assert.Equal(t, PostRefObject{ID: "p1", Title: "قصيدة"}, latest[0].Post)
}
