package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/naqd/naqd/internal/clientstate"
	"github.com/naqd/naqd/internal/gate"
	"github.com/naqd/naqd/internal/provenance"
	"github.com/naqd/naqd/pkg/logging"
)

// clients builds per-browser trackers and gates over the shared client-state
// backend. They are cheap and built fresh for every request.
type clients struct {
	backend     clientstate.Backend
	verifier    gate.Verifier
	maxAttempts int
	logger      *zap.Logger
}

func newClients(backend clientstate.Backend, verifier gate.Verifier, maxAttempts int) *clients {
	return &clients{
		backend:     backend,
		verifier:    verifier,
		maxAttempts: maxAttempts,
		logger:      logging.WithComponent("gate"),
	}
}

func (cl *clients) tracker(c *gin.Context) *provenance.Tracker {
	return provenance.NewTracker(clientstate.NewProvenanceStore(cl.backend, ClientID(c)))
}

func (cl *clients) gate(c *gin.Context, action gate.Action) *gate.Gate {
	store := clientstate.NewGateStore(cl.backend, ClientID(c), SessionID(c))
	return gate.New(action, cl.verifier, store,
		gate.WithMaxAttempts(cl.maxAttempts),
		gate.WithLogger(logging.WithClient(cl.logger, ClientID(c))),
	)
}

// mine returns a lookup of the caller's content of one kind. Lookup errors
// only cost the highlight, so they are logged and read as false.
func (cl *clients) mine(c *gin.Context, kind provenance.Kind) func(id string) bool {
	tracker := cl.tracker(c)
	ctx := c.Request.Context()
	return func(id string) bool {
		ok, err := tracker.WasCreatedByMe(ctx, kind, id)
		if err != nil {
			cl.logger.Warn("Provenance lookup failed", zap.Error(err))
			return false
		}
		return ok
	}
}
