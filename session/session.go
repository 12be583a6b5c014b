// Package session holds pending clarification state between the first
// request and its clarification follow-up.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/intakehq/intake/config"
	core "github.com/intakehq/intake/internal/agent/core"
	"github.com/intakehq/intake/session/inmemory"
	redisstore "github.com/intakehq/intake/session/redis"
	"github.com/intakehq/intake/session/sessionmodels"
)

// Store is the key-value abstraction for pending clarifications. Take is
// destructive: a record can be consumed at most once.
type Store interface {
	Put(ctx context.Context, requestID string, record sessionmodels.Record) error
	Take(ctx context.Context, requestID string) (sessionmodels.Record, bool, error)
}

// NewStore builds the configured backend.
func NewStore(ctx context.Context, cfg config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case "", "inmemory":
		return inmemory.NewStore(cfg.TTL), nil
	case "redis":
		return redisstore.NewStore(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.TTL)
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.Backend)
	}
}

// interface guards for the concrete backends
var (
	_ Store = (*inmemory.Store)(nil)
	_ Store = (*redisstore.Store)(nil)
)

// Record re-exported for callers that only import session.
type Record = sessionmodels.Record

// NewRecord pairs the content and plan held for one clarification round.
func NewRecord(content core.ExtractedContent, plan core.ExecutionPlan) Record {
	return Record{Content: content, Plan: plan, CreatedAt: time.Now()}
}
