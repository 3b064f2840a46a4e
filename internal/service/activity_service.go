package service

import (
	"context"

	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

// ActivityService exposes the audit trail for inspection. Entries are
// append-only; there is no update or delete path.
type ActivityService struct {
	recorder  *AuditRecorder
	evaluator *authz.Evaluator
}

// NewActivityService constructs the service.
func NewActivityService(recorder *AuditRecorder, evaluator *authz.Evaluator) *ActivityService {
	return &ActivityService{recorder: recorder, evaluator: evaluator}
}

// List returns audit entries newest first.
func (s *ActivityService) List(ctx context.Context, actor Actor, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewActivityLog); err != nil {
		return nil, err
	}
	return s.recorder.List(ctx, filter)
}
