package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/naqd/naqd/internal/models"
)

var (
	// ErrPostNotFound is returned when a comment targets a missing post
	ErrPostNotFound = errors.New("post not found")
	// ErrParentMismatch is returned when a reply's parent is missing or belongs to another post
	ErrParentMismatch = errors.New("parent comment does not belong to post")
)

// validID reports whether id can be a primary key. Anything else cannot
// match a row, so lookups short-circuit instead of sending a malformed uuid
// to postgres.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// List returns every post, newest first, with its comment count
func (r *PostRepository) List(ctx context.Context) ([]models.PostSummary, error) {
	var posts []models.PostSummary
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.*, COUNT(comments.id) AS comment_count").
		Joins("LEFT JOIN comments ON comments.post_id = posts.id").
		Group("posts.id").
		Order("posts.created_at DESC").
		Scan(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// GetByID retrieves a post by ID. It returns nil, nil when there is none.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if !validID(id) {
		return nil, nil
	}
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create inserts a post and fills in its id and timestamp
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit("Comments").Create(post).Error
}

// Delete removes a post and all of its comments. It reports whether a post was deleted.
func (r *PostRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// ListByPost returns the comments of a post, oldest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	if !validID(postID) {
		return []models.Comment{}, nil
	}
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Latest returns the newest comments across all posts with their post's id and title
func (r *CommentRepository) Latest(ctx context.Context, limit int) ([]models.LatestComment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return []models.LatestComment{}, nil
	}

	postIDs := make([]string, 0, len(comments))
	seen := make(map[string]bool, len(comments))
	for _, c := range comments {
		if !seen[c.PostID] {
			seen[c.PostID] = true
			postIDs = append(postIDs, c.PostID)
		}
	}

	var refs []models.PostRef
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("id, title").
		Where("id IN ?", postIDs).
		Scan(&refs).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.PostRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	latest := make([]models.LatestComment, 0, len(comments))
	for _, c := range comments {
		ref, ok := byID[c.PostID]
		if !ok {
			// The post was deleted between the two queries.
			continue
		}
		latest = append(latest, models.LatestComment{Comment: c, Post: ref})
	}
	return latest, nil
}

// Create inserts a comment. The post must exist, and a parent, when given,
// must be a comment of the same post.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if !validID(comment.PostID) {
		return ErrPostNotFound
	}
	if comment.ParentCommentID != nil && !validID(*comment.ParentCommentID) {
		return ErrParentMismatch
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var posts int64
		if err := tx.Model(&models.Post{}).Where("id = ?", comment.PostID).Count(&posts).Error; err != nil {
			return err
		}
		if posts == 0 {
			return ErrPostNotFound
		}

		if comment.ParentCommentID != nil {
			var parents int64
			if err := tx.Model(&models.Comment{}).
				Where("id = ? AND post_id = ?", *comment.ParentCommentID, comment.PostID).
				Count(&parents).Error; err != nil {
				return err
			}
			if parents == 0 {
				return fmt.Errorf("%w: %s", ErrParentMismatch, *comment.ParentCommentID)
			}
		}

		return tx.Omit("Replies").Create(comment).Error
	})
}

// Delete removes a comment and every reply below it. It reports whether a comment was deleted.
func (r *CommentRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []string{id}
		frontier := []string{id}
		for len(frontier) > 0 {
			var children []string
			if err := tx.Model(&models.Comment{}).
				Where("parent_comment_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			frontier = frontier[:0]
			for _, c := range children {
				if !contains(ids, c) {
					ids = append(ids, c)
					frontier = append(frontier, c)
				}
			}
		}

		res := tx.Where("id IN ?", ids).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
