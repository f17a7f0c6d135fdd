package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostDraft_Build(t *testing.T) {
	tests := []struct {
		name      string
		draft     PostDraft
		wantField string
		wantLevel CriticismLevel
	}{
		{
			name:      "anonymous with default level",
			draft:     PostDraft{Title: "  قصيدة  ", Content: "نص", IsAnonymous: true, AuthorName: "ignored"},
			wantLevel: CriticismModerate,
		},
		{
			name:      "named harsh",
			draft:     PostDraft{Title: "t", Content: "c", AuthorName: "ليلى", CriticismLevel: "HARSH"},
			wantLevel: CriticismHarsh,
		},
		{"missing title", PostDraft{Title: "   ", Content: "c", IsAnonymous: true}, "title", ""},
		{"missing content", PostDraft{Title: "t", Content: "\n", IsAnonymous: true}, "content", ""},
		{"unknown level", PostDraft{Title: "t", Content: "c", IsAnonymous: true, CriticismLevel: "brutal"}, "criticism_level", ""},
		{"named without name", PostDraft{Title: "t", Content: "c"}, "author_name", ""},
		{"name too long", PostDraft{Title: "t", Content: "c", AuthorName: strings.Repeat("س", 101)}, "author_name", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := tt.draft.Build()
			if tt.wantField != "" {
				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
				assert.Equal(t, tt.wantField, vErr.Field)
				assert.NotEmpty(t, vErr.Message)
				assert.Nil(t, post)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, post.CriticismLevel)
			assert.Equal(t, strings.TrimSpace(tt.draft.Title), post.Title)
			if tt.draft.IsAnonymous {
				assert.Nil(t, post.AuthorName)
			} else {
				require.NotNil(t, post.AuthorName)
				assert.Equal(t, tt.draft.AuthorName, *post.AuthorName)
			}
		})
	}
}

func TestCommentDraft_Build(t *testing.T) {
	blank := "  "
	parent := "c1"

	comment, err := CommentDraft{PostID: "p1", ParentCommentID: &blank, Content: "جميل", IsAnonymous: true}.Build()
	require.NoError(t, err)
	assert.Nil(t, comment.ParentCommentID, "blank parent means top-level")
	assert.False(t, comment.IsReply())

	comment, err = CommentDraft{PostID: "p1", ParentCommentID: &parent, Content: "رد", AuthorName: "سعد"}.Build()
	require.NoError(t, err)
	require.NotNil(t, comment.ParentCommentID)
	assert.Equal(t, "c1", *comment.ParentCommentID)
	assert.True(t, comment.IsReply())

	_, err = CommentDraft{Content: "x", IsAnonymous: true}.Build()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, MsgPostIDRequired, vErr.Message)

	_, err = CommentDraft{PostID: "p1", Content: " ", IsAnonymous: true}.Build()
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "content", vErr.Field)
}

func TestParseCriticismLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    CriticismLevel
		wantErr bool
	}{
		{"", CriticismModerate, false},
		{"light", CriticismLight, false},
		{" Moderate ", CriticismModerate, false},
		{"harsh", CriticismHarsh, false},
		{"savage", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCriticismLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCriticismLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseCriticismLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
