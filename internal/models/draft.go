package models

import (
	"fmt"
	"strings"
)

// Localized validation messages shown next to the offending field
const (
	MsgTitleRequired      = "العنوان مطلوب"
	MsgContentRequired    = "المحتوى مطلوب"
	MsgAuthorRequired     = "اسم الكاتب مطلوب"
	MsgCriticismRequired  = "مستوى النقد مطلوب"
	MsgPostIDRequired     = "خطأ في معرف المقال"
	MsgAuthorNameTooLong  = "اسم الكاتب طويل جدًا"
	maxAuthorNameRuneSize = 100
)

// ValidationError reports a missing or malformed field of a draft
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// PostDraft is the user input for a new post
type PostDraft struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	AuthorName     string `json:"author_name"`
	IsAnonymous    bool   `json:"is_anonymous"`
	CriticismLevel string `json:"criticism_level"`
}

// Build validates the draft and returns the post to insert
func (d PostDraft) Build() (*Post, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: MsgTitleRequired}
	}
	if strings.TrimSpace(d.Content) == "" {
		return nil, &ValidationError{Field: "content", Message: MsgContentRequired}
	}
	level, err := ParseCriticismLevel(d.CriticismLevel)
	if err != nil {
		return nil, &ValidationError{Field: "criticism_level", Message: MsgCriticismRequired}
	}
	author, err := authorName(d.AuthorName, d.IsAnonymous)
	if err != nil {
		return nil, err
	}

	return &Post{
		Title:          title,
		Content:        d.Content,
		AuthorName:     author,
		IsAnonymous:    d.IsAnonymous,
		CriticismLevel: level,
	}, nil
}

// CommentDraft is the user input for a new comment or reply
type CommentDraft struct {
	PostID          string  `json:"post_id"`
	ParentCommentID *string `json:"parent_comment_id"`
	Content         string  `json:"content"`
	AuthorName      string  `json:"author_name"`
	IsAnonymous     bool    `json:"is_anonymous"`
}

// Build validates the draft and returns the comment to insert
func (d CommentDraft) Build() (*Comment, error) {
	postID := strings.TrimSpace(d.PostID)
	if postID == "" {
		return nil, &ValidationError{Field: "post_id", Message: MsgPostIDRequired}
	}
	if strings.TrimSpace(d.Content) == "" {
		return nil, &ValidationError{Field: "content", Message: MsgContentRequired}
	}
	author, err := authorName(d.AuthorName, d.IsAnonymous)
	if err != nil {
		return nil, err
	}

	var parent *string
	if d.ParentCommentID != nil {
		if p := strings.TrimSpace(*d.ParentCommentID); p != "" {
			parent = &p
		}
	}

	return &Comment{
		PostID:          postID,
		ParentCommentID: parent,
		Content:         d.Content,
		AuthorName:      author,
		IsAnonymous:     d.IsAnonymous,
	}, nil
}

// authorName drops the name of anonymous submissions and requires one otherwise
func authorName(name string, anonymous bool) (*string, error) {
	if anonymous {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "author_name", Message: MsgAuthorRequired}
	}
	if len([]rune(name)) > maxAuthorNameRuneSize {
		return nil, &ValidationError{Field: "author_name", Message: MsgAuthorNameTooLong}
	}
	return &name, nil
}
