package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/micromarket/marketplace-api/internal/core/domain"
	"github.com/micromarket/marketplace-api/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that appends events to repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

func (s *auditService) Process(ctx context.Context, event domain.AuditEvent) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("audit %s: %w", event.Action, err)
	}
	s.log.Debug().
		Str("action", string(event.Action)).
		Str("actor_id", event.ActorID).
		Str("target_id", event.TargetID).
		Str("outcome", event.Outcome).
		Msg("audit event stored")
	return nil
}

// nopRecorder discards audit events.
type nopRecorder struct{}

func (nopRecorder) Record(domain.AuditEvent) {}

func recorderOrNop(r ports.AuditRecorder) ports.AuditRecorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

func auditEvent(action domain.AuditAction, actorID, targetID, outcome, detail string) domain.AuditEvent {
	return domain.AuditEvent{
		Action:   action,
		ActorID:  actorID,
		TargetID: targetID,
		Outcome:  outcome,
		Detail:   detail,
		At:       time.Now().UTC(),
	}
}
