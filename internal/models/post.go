package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CriticismLevel is how hard the author wants the critique to be
type CriticismLevel string

const (
	CriticismLight    CriticismLevel = "light"
	CriticismModerate CriticismLevel = "moderate"
	CriticismHarsh    CriticismLevel = "harsh"
)

// Label returns the level as shown to readers
func (l CriticismLevel) Label() string {
	switch l {
	case CriticismLight:
		return "نقد لطيف"
	case CriticismModerate:
		return "نقد معتدل"
	case CriticismHarsh:
		return "نقد شديد"
	default:
		return string(l)
	}
}

// DefaultCriticismLevel is used when a post does not name one
const DefaultCriticismLevel = CriticismModerate

// ParseCriticismLevel validates a criticism level, defaulting empty input
func ParseCriticismLevel(s string) (CriticismLevel, error) {
	switch level := CriticismLevel(strings.ToLower(strings.TrimSpace(s))); level {
	case "":
		return DefaultCriticismLevel, nil
	case CriticismLight, CriticismModerate, CriticismHarsh:
		return level, nil
	default:
		return "", fmt.Errorf("unknown criticism level %q", s)
	}
}

// Post is a submitted piece of writing. Posts are immutable once created;
// the only mutation is deletion, which cascades to comments.
type Post struct {
	ID             string         `gorm:"type:uuid;primaryKey;column:id"`
	Title          string         `gorm:"type:text;not null;column:title"`
	Content        string         `gorm:"type:text;not null;column:content"`
	AuthorName     *string        `gorm:"type:varchar(100);column:author_name"`
	IsAnonymous    bool           `gorm:"not null;column:is_anonymous"`
	CriticismLevel CriticismLevel `gorm:"type:varchar(16);not null;column:criticism_level"`
	CreatedAt      time.Time      `gorm:"not null;index;column:created_at"`

	// Relationships
	Comments []Comment `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate assigns the post id
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CriticismLevel == "" {
		p.CriticismLevel = DefaultCriticismLevel
	}
	return nil
}

// PostSummary is a post with its comment count, as listed on the home page
type PostSummary struct {
	Post
	CommentCount int64 `gorm:"column:comment_count"`
}
