package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/naqd/naqd/internal/clientstate"
	"github.com/naqd/naqd/internal/gate"
	"github.com/naqd/naqd/pkg/config"
	"github.com/naqd/naqd/pkg/logging"
)

// HealthChecker reports whether a dependency is usable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Services are the dependencies the API is built on
type Services struct {
	Posts     PostStore
	Comments  CommentStore
	State     clientstate.Backend
	Verifier  gate.Verifier
	Suggester Suggester
	Responses *ResponseCache
	Health    map[string]HealthChecker
}

// Router sets up API routes
type Router struct {
	handler *JSONRPCHandler
	svc     Services
	cfg     *config.Config
	logger  *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(svc Services, cfg *config.Config) *Router {
	router := &Router{
		handler: NewJSONRPCHandler(),
		svc:     svc,
		cfg:     cfg,
		logger:  logging.WithComponent("api-router"),
	}

	router.registerMethods()

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	engine.GET("/announcement.json", r.announcementHandler)

	// JSON-RPC endpoint
	rpc := engine.Group("/", Identity(r.cfg.Server.SecureCookies))
	rpc.POST("/", r.handler.Handle)
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	cl := newClients(r.svc.State, r.svc.Verifier, r.cfg.Gate.MaxAttempts)

	forum := NewForumAPI(r.svc.Posts, r.svc.Comments, cl, r.svc.Responses, r.cfg.Forum)
	r.handler.RegisterMethod("forum.list_posts", forum.ListPosts)
	r.handler.RegisterMethod("forum.get_post", forum.GetPost)
	r.handler.RegisterMethod("forum.latest_comments", forum.LatestComments)
	r.handler.RegisterMethod("forum.create_post", forum.CreatePost)
	r.handler.RegisterMethod("forum.create_comment", forum.CreateComment)
	r.handler.RegisterMethod("forum.delete_post", forum.DeletePost)
	r.handler.RegisterMethod("forum.delete_comment", forum.DeleteComment)
	r.handler.RegisterMethod("forum.announcement", forum.Announcement)

	gates := NewGateAPI(cl)
	r.handler.RegisterMethod("gate.authenticate", gates.Authenticate)
	r.handler.RegisterMethod("gate.status", gates.Status)
	r.handler.RegisterMethod("gate.verify_password", gates.VerifyPassword)

	helper := NewAssistantAPI(r.svc.Suggester)
	r.handler.RegisterMethod("assistant.suggest", helper.Suggest)

	r.logger.Info("JSON-RPC methods registered", zap.Int("count", r.handler.Methods()))
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	status := http.StatusOK
	for name, checker := range r.svc.Health {
		if err := checker.Health(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "OK"
	}

	state := "OK"
	if status != http.StatusOK {
		state = "DEGRADED"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"service": "naqd-api",
		"checks":  checks,
	})
}

// announcementHandler serves the site banner as a static document
func (r *Router) announcementHandler(c *gin.Context) {
	if r.cfg.Forum.Announcement == "" {
		c.JSON(http.StatusOK, gin.H{"message": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": r.cfg.Forum.Announcement})
}
