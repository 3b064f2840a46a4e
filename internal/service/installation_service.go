package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/storage"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const entityTypeInstallation = "installation_request"

// InstallationService tracks on-site installation work: request, schedule
// with a technician, complete with a site photo, or cancel.
type InstallationService struct {
	installations repository.InstallationRepository
	customers     repository.CustomerRepository
	users         repository.UserRepository
	evaluator     *authz.Evaluator
	recorder      *AuditRecorder
	uploader      storage.Uploader
	dispatcher    events.Dispatcher
}

// NewInstallationService constructs the service.
func NewInstallationService(installations repository.InstallationRepository, customers repository.CustomerRepository, users repository.UserRepository, evaluator *authz.Evaluator, recorder *AuditRecorder, uploader storage.Uploader, dispatcher events.Dispatcher) *InstallationService {
	return &InstallationService{
		installations: installations,
		customers:     customers,
		users:         users,
		evaluator:     evaluator,
		recorder:      recorder,
		uploader:      uploader,
		dispatcher:    dispatcher,
	}
}

// InstallationCreateInput describes a new request.
type InstallationCreateInput struct {
	CustomerID  string
	ItemID      *string
	Description string
}

// Create registers an installation request for a customer.
func (s *InstallationService) Create(ctx context.Context, actor Actor, input InstallationCreateInput) (*domain.InstallationRequest, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionCreateInstallation); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}
	if _, err := s.customers.GetByID(ctx, input.CustomerID); err != nil {
		return nil, apperrors.MapError(err)
	}

	req := &domain.InstallationRequest{
		RequestNumber: generateRequestNumber(),
		CustomerID:    input.CustomerID,
		ItemID:        input.ItemID,
		Description:   strings.TrimSpace(input.Description),
		Status:        domain.InstallationStatusRequested,
		CreatedBy:     actor.UserID,
	}
	if err := s.installations.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeInstallation, req.ID, domain.AuditActionCreate,
		nil, Snapshot(req), actor.UserID, actor.SourceAddress)
	return req, nil
}

// Schedule books a technician and a date for a REQUESTED installation.
func (s *InstallationService) Schedule(ctx context.Context, actor Actor, requestID, technicianID string, scheduledFor time.Time) (*domain.InstallationRequest, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionUpdateInstallation); err != nil {
		return nil, err
	}
	req, err := s.installations.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if req.Status != domain.InstallationStatusRequested && req.Status != domain.InstallationStatusScheduled {
		return nil, apperrors.NewInvalidTransition(string(req.Status), string(domain.InstallationStatusScheduled))
	}
	technician, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !technician.IsActive() {
		return nil, apperrors.NewValidationError("technician is inactive",
			map[string]any{"technician_id": technicianID})
	}
	if scheduledFor.Before(time.Now()) {
		return nil, apperrors.NewValidationError("scheduled date must be in the future", nil)
	}

	before := Snapshot(req)
	req.Status = domain.InstallationStatusScheduled
	req.TechnicianID = &technician.ID
	req.ScheduledFor = &scheduledFor
	if err := s.installations.Update(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeInstallation, req.ID, domain.AuditActionUpdate,
		before, Snapshot(req), actor.UserID, actor.SourceAddress)
	s.publish(ctx, events.EventInstallationScheduled, actor, req)
	return req, nil
}

// Complete finishes a SCHEDULED installation. The site photo is mandatory and
// is stored before the status flips.
func (s *InstallationService) Complete(ctx context.Context, actor Actor, requestID string, photo AttachmentInput) (*domain.InstallationRequest, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionUpdateInstallation); err != nil {
		return nil, err
	}
	req, err := s.installations.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if req.Status != domain.InstallationStatusScheduled {
		return nil, apperrors.NewInvalidTransition(string(req.Status), string(domain.InstallationStatusCompleted))
	}
	if photo.Content == nil {
		return nil, apperrors.NewValidationError("completion photo required", nil)
	}

	key := fmt.Sprintf("installations/%s/%s-%s", req.ID, uuid.NewString(), photo.FileName)
	url, err := s.uploader.Upload(ctx, key, photo.Content, photo.MimeType)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	before := Snapshot(req)
	now := time.Now()
	req.Status = domain.InstallationStatusCompleted
	req.CompletedAt = &now
	req.PhotoURL = &url
	req.PhotoKey = &key
	if err := s.installations.Update(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeInstallation, req.ID, domain.AuditActionUpdate,
		before, Snapshot(req), actor.UserID, actor.SourceAddress)
	s.publish(ctx, events.EventInstallationCompleted, actor, req)
	return req, nil
}

// Cancel aborts a request that has not been completed.
func (s *InstallationService) Cancel(ctx context.Context, actor Actor, requestID string) (*domain.InstallationRequest, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionCancelInstallation); err != nil {
		return nil, err
	}
	req, err := s.installations.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if req.Status == domain.InstallationStatusCompleted || req.Status == domain.InstallationStatusCancelled {
		return nil, apperrors.NewInvalidTransition(string(req.Status), string(domain.InstallationStatusCancelled))
	}

	before := Snapshot(req)
	req.Status = domain.InstallationStatusCancelled
	if err := s.installations.Update(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeInstallation, req.ID, domain.AuditActionUpdate,
		before, Snapshot(req), actor.UserID, actor.SourceAddress)
	return req, nil
}

// Get returns one request.
func (s *InstallationService) Get(ctx context.Context, actor Actor, requestID string) (*domain.InstallationRequest, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewInstallations); err != nil {
		return nil, err
	}
	req, err := s.installations.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return req, nil
}

// List returns requests matching the filter.
func (s *InstallationService) List(ctx context.Context, actor Actor, filter repository.InstallationFilter) ([]domain.InstallationRequest, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewInstallations); err != nil {
		return nil, err
	}
	return s.installations.List(ctx, filter)
}

func (s *InstallationService) publish(ctx context.Context, eventType events.EventType, actor Actor, req *domain.InstallationRequest) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  req.ID,
		ActorID:   actor.UserID,
		Timestamp: time.Now(),
		Payload: events.InstallationPayload{
			RequestNumber: req.RequestNumber,
			CustomerID:    req.CustomerID,
			ScheduledFor:  req.ScheduledFor,
		},
	})
}

func generateRequestNumber() string {
	return "INS-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
