package ports

import (
	"context"

	"github.com/micromarket/marketplace-api/internal/core/domain"
)

// AuditRepository appends to the audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuditEvent) error
}

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditService persists a single dequeued audit event.
type AuditService interface {
	Process(ctx context.Context, event domain.AuditEvent) error
}

// LoginThrottler limits repeated failed logins per key.
type LoginThrottler interface {
	Allow(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
