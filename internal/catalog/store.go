// Package catalog contains the data access layer for companies and jobs.
// It is transport-agnostic: used by the HTTP handlers (api package) and the
// gRPC server (grpcserver package).
package catalog

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool the stores need.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Publisher receives change events after successful writes.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Event channels.
const (
	ChannelCompanyCreated = "catalog.company.created"
	ChannelCompanyUpdated = "catalog.company.updated"
	ChannelCompanyDeleted = "catalog.company.deleted"
	ChannelJobCreated     = "catalog.job.created"
	ChannelJobUpdated     = "catalog.job.updated"
	ChannelJobDeleted     = "catalog.job.deleted"
)

// publish is best-effort: a failed publish never fails the write it follows.
func publish(ctx context.Context, p Publisher, channel string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, channel, payload); err != nil {
		slog.Warn("publish event failed", "channel", channel, "err", err)
	}
}
