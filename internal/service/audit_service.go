package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

// AuditRecorder captures before/after snapshots around mutating operations.
// Recording is best-effort: a failed audit write is reported to the
// operational log and never escalated to the caller.
type AuditRecorder struct {
	entries repository.AuditRepository
	logger  *zap.Logger
}

// NewAuditRecorder constructs the recorder.
func NewAuditRecorder(entries repository.AuditRepository, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{entries: entries, logger: logger}
}

// Record persists one audit entry. Callers snapshot previousState before the
// mutation runs and call Record only after the mutation succeeds.
func (r *AuditRecorder) Record(ctx context.Context, entityType, entityID string, action domain.AuditAction, previousState, newState map[string]any, performedBy, sourceAddress string) {
	if r == nil || r.entries == nil {
		return
	}
	entry := &domain.AuditEntry{
		EntityType:    entityType,
		EntityID:      entityID,
		Action:        action,
		PreviousState: previousState,
		NewState:      newState,
		PerformedBy:   performedBy,
		SourceAddress: sourceAddress,
	}
	if err := r.entries.Create(ctx, entry); err != nil {
		r.logger.Error("audit write failed",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

// List exposes the activity log.
func (r *AuditRecorder) List(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	return r.entries.List(ctx, filter)
}

// Snapshot converts an entity to a generic state map for audit storage.
func Snapshot(entity any) map[string]any {
	if entity == nil {
		return nil
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return nil
	}
	var state map[string]any
	if err := json.Unmarshal(data, &state); err != nil {
		return nil
	}
	return state
}
