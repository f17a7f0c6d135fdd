package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a reply to a post or to another comment of the same post.
// ParentCommentID is nil for top-level comments.
type Comment struct {
	ID              string    `gorm:"type:uuid;primaryKey;column:id"`
	PostID          string    `gorm:"type:uuid;not null;index;column:post_id"`
	ParentCommentID *string   `gorm:"type:uuid;index;column:parent_comment_id"`
	Content         string    `gorm:"type:text;not null;column:content"`
	AuthorName      *string   `gorm:"type:varchar(100);column:author_name"`
	IsAnonymous     bool      `gorm:"not null;column:is_anonymous"`
	CreatedAt       time.Time `gorm:"not null;index;column:created_at"`

	// Relationships
	Replies []Comment `gorm:"foreignKey:ParentCommentID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

// BeforeCreate assigns the comment id
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IsReply reports whether the comment answers another comment
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}

// PostRef is the slice of a post shown next to a comment in the latest feed
type PostRef struct {
	ID    string `gorm:"column:id"`
	Title string `gorm:"column:title"`
}

// LatestComment is a comment together with the post it belongs to
type LatestComment struct {
	Comment
	Post PostRef
}
