package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/naqd/naqd/internal/api/objects"
	"github.com/naqd/naqd/internal/db"
	"github.com/naqd/naqd/internal/gate"
	"github.com/naqd/naqd/internal/models"
	"github.com/naqd/naqd/internal/provenance"
	"github.com/naqd/naqd/internal/thread"
	"github.com/naqd/naqd/pkg/config"
	"github.com/naqd/naqd/pkg/logging"
	"github.com/naqd/naqd/pkg/telemetry"
)

// maxLatestComments bounds forum.latest_comments. The cached feed always
// holds this many entries and is cut down per request.
const maxLatestComments = 50

// PostStore is the post persistence used by the forum API
type PostStore interface {
	List(ctx context.Context) ([]models.PostSummary, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CommentStore is the comment persistence used by the forum API
type CommentStore interface {
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	Latest(ctx context.Context, limit int) ([]models.LatestComment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id string) (bool, error)
}

// ForumAPI provides the forum.* methods
type ForumAPI struct {
	posts    PostStore
	comments CommentStore
	clients  *clients
	cache    *ResponseCache
	cfg      config.ForumConfig
	logger   *zap.Logger
}

// NewForumAPI creates a new forum API
func NewForumAPI(posts PostStore, comments CommentStore, cl *clients, rc *ResponseCache, cfg config.ForumConfig) *ForumAPI {
	return &ForumAPI{
		posts:    posts,
		comments: comments,
		clients:  cl,
		cache:    rc,
		cfg:      cfg,
		logger:   logging.WithComponent("forum"),
	}
}

type idParams struct {
	ID string `json:"id"`
}

type deleteParams struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type latestParams struct {
	Limit int `json:"limit"`
}

// CreatedResult is returned by the create methods
type CreatedResult struct {
	ID string `json:"id"`
}

// DeletedResult is returned by the delete methods
type DeletedResult struct {
	Deleted bool `json:"deleted"`
}

// AnnouncementResult carries the site banner
type AnnouncementResult struct {
	Message string `json:"message"`
}

// ListPosts handles forum.list_posts
func (f *ForumAPI) ListPosts(c *gin.Context, params json.RawMessage) (interface{}, error) {
	ctx := c.Request.Context()

	posts, err := fetchCached(ctx, f.cache, postListKey, func() ([]objects.PostSummaryObject, error) {
		summaries, err := f.posts.List(ctx)
		if err != nil {
			return nil, err
		}
		return objects.NewPostSummaries(summaries), nil
	})
	if err != nil {
		return nil, serverError(MsgPostsLoadFailed, err)
	}

	mine := f.clients.mine(c, provenance.KindPost)
	for i := range posts {
		posts[i].CreatedByMe = mine(posts[i].ID)
	}
	return posts, nil
}

// GetPost handles forum.get_post
func (f *ForumAPI) GetPost(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p idParams
	if err := bindParams(params, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, invalidParams(models.MsgPostIDRequired)
	}
	ctx := c.Request.Context()

	post, err := f.posts.GetByID(ctx, p.ID)
	if err != nil {
		return nil, serverError(MsgPostLoadFailed, err)
	}
	if post == nil {
		return nil, notFound(MsgPostNotFound)
	}

	comments, err := f.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, serverError(MsgPostLoadFailed, err)
	}

	roots, cycles := thread.BuildWithCycles(comments)
	if len(cycles) > 0 {
		f.logger.Warn("Comment cycles broken up for rendering",
			zap.String("post_id", post.ID), zap.Strings("promoted", cycles))
	}

	detail := objects.PostDetail{
		Post:         objects.NewPost(post),
		Comments:     objects.NewCommentTree(roots, f.cfg.MaxRenderDepth, f.clients.mine(c, provenance.KindComment)),
		CommentCount: len(comments),
	}
	detail.Post.CreatedByMe = f.clients.mine(c, provenance.KindPost)(post.ID)
	return detail, nil
}

// LatestComments handles forum.latest_comments
func (f *ForumAPI) LatestComments(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p latestParams
	if err := bindParams(params, &p); err != nil {
		return nil, err
	}
	limit := p.Limit
	if limit <= 0 {
		limit = f.cfg.LatestLimit
	}
	if limit > maxLatestComments {
		limit = maxLatestComments
	}
	ctx := c.Request.Context()

	latest, err := fetchCached(ctx, f.cache, latestCommentsKey, func() ([]objects.LatestCommentObject, error) {
		comments, err := f.comments.Latest(ctx, maxLatestComments)
		if err != nil {
			return nil, err
		}
		return objects.NewLatestComments(comments), nil
	})
	if err != nil {
		return nil, serverError(MsgLatestLoadFailed, err)
	}
	if len(latest) > limit {
		latest = latest[:limit]
	}

	mine := f.clients.mine(c, provenance.KindComment)
	for i := range latest {
		latest[i].CreatedByMe = mine(latest[i].ID)
	}
	return latest, nil
}

// requireSession fails unless the caller passed the auth gate this session
func (f *ForumAPI) requireSession(c *gin.Context) error {
	g := f.clients.gate(c, gate.ActionAuth)
	status, err := g.Status(c.Request.Context())
	if err != nil {
		return serverError(MsgGateFailed, err)
	}
	if status.Disabled {
		return NewError(CodeLockedOut, gate.MsgLockedOut)
	}
	if !status.Authenticated {
		return NewError(CodeUnauthenticated, MsgAuthRequired)
	}
	return nil
}

// CreatePost handles forum.create_post
func (f *ForumAPI) CreatePost(c *gin.Context, params json.RawMessage) (interface{}, error) {
	if err := f.requireSession(c); err != nil {
		return nil, err
	}
	var draft models.PostDraft
	if err := bindParams(params, &draft); err != nil {
		return nil, err
	}
	post, err := draft.Build()
	if err != nil {
		return nil, validationError(err)
	}

	ctx := c.Request.Context()
	if err := f.posts.Create(ctx, post); err != nil {
		return nil, serverError(MsgPostCreateFailed, err)
	}
	f.created(c, provenance.KindPost, post.ID)
	return CreatedResult{ID: post.ID}, nil
}

// CreateComment handles forum.create_comment
func (f *ForumAPI) CreateComment(c *gin.Context, params json.RawMessage) (interface{}, error) {
	if err := f.requireSession(c); err != nil {
		return nil, err
	}
	var draft models.CommentDraft
	if err := bindParams(params, &draft); err != nil {
		return nil, err
	}
	comment, err := draft.Build()
	if err != nil {
		return nil, validationError(err)
	}

	ctx := c.Request.Context()
	if err := f.comments.Create(ctx, comment); err != nil {
		switch {
		case errors.Is(err, db.ErrPostNotFound):
			return nil, notFound(MsgPostNotFound)
		case errors.Is(err, db.ErrParentMismatch):
			return nil, invalidParams(MsgParentNotFound)
		}
		return nil, serverError(MsgCommentCreateFailed, err)
	}
	f.created(c, provenance.KindComment, comment.ID)
	return CreatedResult{ID: comment.ID}, nil
}

// created records provenance, drops cached listings and counts the creation.
// The content already exists, so failures here are only logged.
func (f *ForumAPI) created(c *gin.Context, kind provenance.Kind, id string) {
	ctx := c.Request.Context()
	if err := f.clients.tracker(c).RecordCreated(ctx, kind, id); err != nil {
		f.logger.Warn("Failed to record provenance", zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
	}
	f.cache.Invalidate(ctx)
	telemetry.Count(ctx, "naqd.content.created", attribute.String("kind", string(kind)))
	f.logger.Info("Content created", zap.String("kind", string(kind)), zap.String("id", id))
}

// authorizeDelete runs the delete gate for the caller
func (f *ForumAPI) authorizeDelete(c *gin.Context, password string) error {
	res, err := f.clients.gate(c, gate.ActionDelete).Authenticate(c.Request.Context(), password)
	if errors.Is(err, gate.ErrDisabled) {
		return lockedOut(res)
	}
	if err != nil {
		return serverError(MsgGateFailed, err)
	}
	if !res.Valid {
		if res.Disabled {
			return lockedOut(res)
		}
		return wrongPassword(res)
	}
	return nil
}

// DeletePost handles forum.delete_post
func (f *ForumAPI) DeletePost(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p deleteParams
	if err := bindParams(params, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, invalidParams(models.MsgPostIDRequired)
	}
	if err := f.authorizeDelete(c, p.Password); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	deleted, err := f.posts.Delete(ctx, p.ID)
	if err != nil {
		return nil, serverError(MsgPostDeleteFailed, err)
	}
	if !deleted {
		return nil, notFound(MsgPostNotFound)
	}
	f.cache.Invalidate(ctx)
	f.logger.Info("Post deleted", zap.String("id", p.ID))
	return DeletedResult{Deleted: true}, nil
}

// DeleteComment handles forum.delete_comment
func (f *ForumAPI) DeleteComment(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p deleteParams
	if err := bindParams(params, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, invalidParams(MsgInvalidParams)
	}
	if err := f.authorizeDelete(c, p.Password); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	deleted, err := f.comments.Delete(ctx, p.ID)
	if err != nil {
		return nil, serverError(MsgCommentDeleteFailed, err)
	}
	if !deleted {
		return nil, notFound(MsgCommentNotFound)
	}
	f.cache.Invalidate(ctx)
	f.logger.Info("Comment deleted", zap.String("id", p.ID))
	return DeletedResult{Deleted: true}, nil
}

// Announcement handles forum.announcement. It returns null when no banner is set.
func (f *ForumAPI) Announcement(c *gin.Context, params json.RawMessage) (interface{}, error) {
	if f.cfg.Announcement == "" {
		return nil, nil
	}
	return AnnouncementResult{Message: f.cfg.Announcement}, nil
}

func validationError(err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return invalidParams(verr.Message).WithData(map[string]string{"field": verr.Field})
	}
	return invalidParams(MsgInvalidParams).WithCause(err)
}
