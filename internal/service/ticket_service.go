package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/storage"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const entityTypeTicket = "ticket"

// Actor identifies the caller of a mutating operation.
type Actor struct {
	UserID        string
	RoleID        string
	SourceAddress string
}

// TicketService is the lifecycle engine: it owns the status state machine,
// assignment, approval, comments, attachments and deletion.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.TicketCommentRepository
	attachments repository.AttachmentRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	evaluator   *authz.Evaluator
	recorder    *AuditRecorder
	uploader    storage.Uploader
	dispatcher  events.Dispatcher
	policy      config.TicketConfig
}

// TicketDependencies bundles collaborators for the lifecycle engine.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.TicketCommentRepository
	AttachmentRepo repository.AttachmentRepository
	AssignmentRepo repository.AssignmentRepository
	UserRepo       repository.UserRepository
	Evaluator      *authz.Evaluator
	Recorder       *AuditRecorder
	Uploader       storage.Uploader
	Dispatcher     events.Dispatcher
	Policy         config.TicketConfig
}

// NewTicketService constructs the engine.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		assignments: deps.AssignmentRepo,
		users:       deps.UserRepo,
		evaluator:   deps.Evaluator,
		recorder:    deps.Recorder,
		uploader:    deps.Uploader,
		dispatcher:  deps.Dispatcher,
		policy:      deps.Policy,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title        string
	Description  string
	Category     domain.TicketCategory
	Priority     domain.TicketPriority
	CustomerID   *string
	ItemID       *string
	SerialNumber *string
	DueDate      *time.Time
}

// AttachmentInput carries an upload stream plus metadata.
type AttachmentInput struct {
	FileName  string
	MimeType  string
	SizeBytes int64
	Content   io.Reader
}

// Create opens a new ticket. When a default assignee is configured and active,
// the ticket lands directly in ASSIGNED with an assignment history row.
func (s *TicketService) Create(ctx context.Context, actor Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionCreateTicket); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	ticket := &domain.Ticket{
		TicketNumber: generateTicketNumber(),
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		Category:     input.Category,
		Priority:     input.Priority,
		Status:       domain.TicketStatusOpen,
		CreatorID:    actor.UserID,
		CustomerID:   input.CustomerID,
		ItemID:       input.ItemID,
		SerialNumber: input.SerialNumber,
		DueDate:      input.DueDate,
	}
	if ticket.Category == "" {
		ticket.Category = domain.TicketCategoryOther
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	var defaultAssignee *domain.User
	if s.policy.DefaultAssigneeID != "" {
		if candidate, err := s.users.GetByID(ctx, s.policy.DefaultAssigneeID); err == nil && candidate.IsActive() {
			defaultAssignee = candidate
			ticket.Status = domain.TicketStatusAssigned
			ticket.AssigneeID = &candidate.ID
		}
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if defaultAssignee != nil {
		record := &domain.AssignmentRecord{
			TicketID:   ticket.ID,
			AssignerID: actor.UserID,
			AssigneeID: defaultAssignee.ID,
			Note:       "auto-assigned on creation",
		}
		if err := s.assignments.Create(ctx, record); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	s.recorder.Record(ctx, entityTypeTicket, ticket.ID, domain.AuditActionCreate,
		nil, Snapshot(ticket), actor.UserID, actor.SourceAddress)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		EntityID: ticket.ID,
		ActorID:  actor.UserID,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Title:        ticket.Title,
			Priority:     ticket.Priority,
			AssigneeID:   ticket.AssigneeID,
		},
	})
	return ticket, nil
}

// Assign moves an OPEN or REOPENED ticket to ASSIGNED, or reassigns an already
// ASSIGNED ticket. The target must be an active user.
func (s *TicketService) Assign(ctx context.Context, actor Actor, ticketID, assigneeID, note string) (*domain.Ticket, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionAssignTicket); err != nil {
		return nil, err
	}
	ticket, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !assignee.IsActive() {
		return nil, apperrors.NewValidationError("cannot assign ticket to inactive user",
			map[string]any{"assignee_id": assigneeID})
	}

	// Reassignment keeps the ASSIGNED status; anything else must be a legal
	// transition into it.
	if ticket.Status != domain.TicketStatusAssigned {
		if err := checkTransition(ticket.Status, domain.TicketStatusAssigned); err != nil {
			return nil, err
		}
	}

	before := Snapshot(ticket)
	ticket.Status = domain.TicketStatusAssigned
	ticket.AssigneeID = &assignee.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	record := &domain.AssignmentRecord{
		TicketID:   ticket.ID,
		AssignerID: actor.UserID,
		AssigneeID: assignee.ID,
		Note:       note,
	}
	if err := s.assignments.Create(ctx, record); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeTicket, ticket.ID, domain.AuditActionUpdate,
		before, Snapshot(ticket), actor.UserID, actor.SourceAddress)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		EntityID: ticket.ID,
		ActorID:  actor.UserID,
		Payload: events.TicketAssignedPayload{
			AssigneeID: assignee.ID,
			Note:       note,
		},
	})
	return ticket, nil
}

// Start moves an ASSIGNED ticket into IN_PROGRESS. The caller must be the
// assignee unless their role is unrestricted or ranks at approval level.
func (s *TicketService) Start(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionUpdateTicket); err != nil {
		return nil, err
	}
	ticket, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AssigneeID == nil || *ticket.AssigneeID != actor.UserID {
		grant, level, err := s.evaluator.ResolveGrant(ctx, actor.RoleID)
		if err != nil {
			return nil, err
		}
		if !grant.IsUnrestricted() && !authz.IsRoleAtLeast(level, s.policy.ApprovalMinLevel) {
			return nil, apperrors.NewForbidden("only the assignee may start this ticket")
		}
	}
	return s.applyStatusChange(ctx, actor, ticket, domain.TicketStatusInProgress, "")
}

// Resolve completes work on an IN_PROGRESS ticket. The resolution note is
// mandatory; the branch to RESOLVED or PENDING_APPROVAL depends on whether the
// caller's role is covered by the auto-approval policy.
func (s *TicketService) Resolve(ctx context.Context, actor Actor, ticketID, resolutionNote string) (*domain.Ticket, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionUpdateTicket); err != nil {
		return nil, err
	}
	note := strings.TrimSpace(resolutionNote)
	if note == "" {
		return nil, apperrors.NewValidationError("resolution note required", nil)
	}
	ticket, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	role, err := s.evaluator.ResolveRole(ctx, actor.RoleID)
	if err != nil {
		return nil, err
	}
	target := domain.TicketStatusPendingApproval
	if role.Unrestricted || s.policy.AutoApprovesRole(role.Code) {
		target = domain.TicketStatusResolved
	}

	return s.applyStatusChange(ctx, actor, ticket, target, note)
}

// Approve moves PENDING_APPROVAL to RESOLVED and stamps resolvedAt.
func (s *TicketService) Approve(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionApproveTicket); err != nil {
		return nil, err
	}
	ticket, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.applyStatusChange(ctx, actor, ticket, domain.TicketStatusResolved, "")
}

// Close moves RESOLVED to CLOSED.
func (s *TicketService) Close(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionUpdateTicket); err != nil {
		return nil, err
	}
	ticket, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.applyStatusChange(ctx, actor, ticket, domain.TicketStatusClosed, "")
}

// Reopen moves CLOSED back to REOPENED, only while the reopen feature flag is
// on and the configured window since closure has not elapsed.
func (s *TicketService) Reopen(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionUpdateTicket); err != nil {
		return nil, err
	}
	ticket, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(ticket.Status, domain.TicketStatusReopened); err != nil {
		return nil, err
	}
	if !s.policy.AllowReopenClosed {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusReopened))
	}
	if ticket.ClosedAt == nil || time.Now().After(ticket.ClosedAt.Add(s.policy.ReopenWindow())) {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusReopened))
	}
	return s.applyStatusChange(ctx, actor, ticket, domain.TicketStatusReopened, "")
}

// Delete soft-deletes a non-terminal ticket. The reason is mandatory and is
// embedded in the audit entry's previous state; nothing is mutated and no
// audit row is written when validation fails.
func (s *TicketService) Delete(ctx context.Context, actor Actor, ticketID, reason string) error {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionDeleteTicket); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if len(reason) < s.policy.MinDeleteReasonLen {
		return apperrors.NewValidationError(
			fmt.Sprintf("deletion reason must be at least %d characters", s.policy.MinDeleteReasonLen), nil)
	}
	ticket, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return err
	}
	if isTerminal(ticket.Status) {
		return apperrors.NewInvalidTransition(string(ticket.Status), "DELETED")
	}

	before := Snapshot(ticket)
	before["delete_reason"] = reason
	now := time.Now()
	ticket.DeletedAt = &now
	ticket.DeleteReason = &reason
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeTicket, ticket.ID, domain.AuditActionDelete,
		before, nil, actor.UserID, actor.SourceAddress)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		EntityID: ticket.ID,
		ActorID:  actor.UserID,
		Payload:  events.TicketDeletedPayload{Reason: reason},
	})
	return nil
}

// AddComment appends a comment in any non-deleted state.
func (s *TicketService) AddComment(ctx context.Context, actor Actor, ticketID, body string, internal bool) (*domain.TicketComment, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionUpdateTicket); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidationError("comment body required", nil)
	}
	ticket, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	before := Snapshot(ticket)
	comment := &domain.TicketComment{
		TicketID: ticket.ID,
		AuthorID: actor.UserID,
		Body:     strings.TrimSpace(body),
		Internal: internal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	after := Snapshot(ticket)
	after["comment_added"] = comment.ID
	s.recorder.Record(ctx, entityTypeTicket, ticket.ID, domain.AuditActionUpdate,
		before, after, actor.UserID, actor.SourceAddress)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		EntityID: ticket.ID,
		ActorID:  actor.UserID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			Internal:    comment.Internal,
			BodyPreview: stringPreview(comment.Body, 120),
		},
	})
	return comment, nil
}

// AddAttachment uploads the file and links it to the ticket. The attachment
// delta is audited as an UPDATE.
func (s *TicketService) AddAttachment(ctx context.Context, actor Actor, ticketID string, input AttachmentInput) (*domain.TicketAttachment, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionUpdateTicket); err != nil {
		return nil, err
	}
	ticket, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	existing, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	key := fmt.Sprintf("tickets/%s/%s-%s", ticket.ID, uuid.NewString(), input.FileName)
	url, err := s.uploader.Upload(ctx, key, input.Content, input.MimeType)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	att := &domain.TicketAttachment{
		TicketID:   ticket.ID,
		UploaderID: actor.UserID,
		StorageKey: key,
		PublicURL:  url,
		FileName:   input.FileName,
		MimeType:   input.MimeType,
		SizeBytes:  input.SizeBytes,
	}
	if err := s.attachments.Create(ctx, att); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeTicket, ticket.ID, domain.AuditActionUpdate,
		map[string]any{"attachments": attachmentNames(existing)},
		map[string]any{"attachments": attachmentNames(append(existing, *att))},
		actor.UserID, actor.SourceAddress)
	return att, nil
}

// RemoveAttachment unlinks and deletes the stored object.
func (s *TicketService) RemoveAttachment(ctx context.Context, actor Actor, ticketID, attachmentID string) error {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionUpdateTicket); err != nil {
		return err
	}
	ticket, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return err
	}
	att, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if att.TicketID != ticket.ID {
		return apperrors.NewNotFound("attachment", map[string]any{"attachment_id": attachmentID})
	}

	existing, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	if err := s.attachments.Delete(ctx, att.ID); err != nil {
		return apperrors.MapError(err)
	}
	// The DB row is gone; an orphaned stored object is acceptable.
	_ = s.uploader.Delete(ctx, att.StorageKey)

	remaining := make([]domain.TicketAttachment, 0, len(existing))
	for _, a := range existing {
		if a.ID != att.ID {
			remaining = append(remaining, a)
		}
	}
	s.recorder.Record(ctx, entityTypeTicket, ticket.ID, domain.AuditActionUpdate,
		map[string]any{"attachments": attachmentNames(existing)},
		map[string]any{"attachments": attachmentNames(remaining)},
		actor.UserID, actor.SourceAddress)
	return nil
}

// Get returns a ticket with its comments and attachments. Callers holding only
// view_tickets see their own tickets; view_all_tickets grants everything.
func (s *TicketService) Get(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, []domain.TicketComment, []domain.TicketAttachment, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewTickets, domain.PermissionViewAllTickets); err != nil {
		return nil, nil, nil, err
	}
	ticket, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := s.checkViewScope(ctx, actor, ticket); err != nil {
		return nil, nil, nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	return ticket, comments, attachments, nil
}

// List returns tickets visible to the caller.
func (s *TicketService) List(ctx context.Context, actor Actor, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewTickets, domain.PermissionViewAllTickets); err != nil {
		return nil, err
	}
	grant, _, err := s.evaluator.ResolveGrant(ctx, actor.RoleID)
	if err != nil {
		return nil, err
	}
	if !grant.Allows(domain.PermissionViewAllTickets) {
		filter.CreatorID = &actor.UserID
	}
	return s.tickets.ListWithFilter(ctx, filter)
}

// ListAssignments returns the assignment history for a ticket.
func (s *TicketService) ListAssignments(ctx context.Context, actor Actor, ticketID string, limit, offset int) ([]domain.AssignmentRecord, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewTickets, domain.PermissionViewAllTickets); err != nil {
		return nil, err
	}
	ticket, err := s.loadLive(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.checkViewScope(ctx, actor, ticket); err != nil {
		return nil, err
	}
	return s.assignments.ListByTicket(ctx, ticket.ID, limit, offset)
}

// applyStatusChange runs the transition check, snapshots, mutates and audits.
func (s *TicketService) applyStatusChange(ctx context.Context, actor Actor, ticket *domain.Ticket, target domain.TicketStatus, note string) (*domain.Ticket, error) {
	if err := checkTransition(ticket.Status, target); err != nil {
		return nil, err
	}

	// Snapshot first so the audit row's previous state reflects the ticket as
	// it stood before this call, including any note being recorded now.
	before := Snapshot(ticket)
	oldStatus := ticket.Status
	ticket.Status = target
	if note != "" {
		ticket.ResolutionNote = &note
	}
	now := time.Now()
	switch target {
	case domain.TicketStatusResolved:
		ticket.ResolvedAt = &now
	case domain.TicketStatusClosed:
		ticket.ClosedAt = &now
	case domain.TicketStatusReopened:
		ticket.ResolvedAt = nil
		ticket.ClosedAt = nil
		ticket.ResolutionNote = nil
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeTicket, ticket.ID, domain.AuditActionUpdate,
		before, Snapshot(ticket), actor.UserID, actor.SourceAddress)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		EntityID: ticket.ID,
		ActorID:  actor.UserID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: target,
			Note:      note,
		},
	})
	return ticket, nil
}

func (s *TicketService) checkViewScope(ctx context.Context, actor Actor, ticket *domain.Ticket) error {
	grant, _, err := s.evaluator.ResolveGrant(ctx, actor.RoleID)
	if err != nil {
		return err
	}
	if grant.Allows(domain.PermissionViewAllTickets) {
		return nil
	}
	if ticket.CreatorID == actor.UserID {
		return nil
	}
	if ticket.AssigneeID != nil && *ticket.AssigneeID == actor.UserID {
		return nil
	}
	return apperrors.NewForbidden("access denied")
}

func (s *TicketService) loadLive(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.IsDeleted() {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketNumber() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func attachmentNames(attachments []domain.TicketAttachment) []string {
	names := make([]string, 0, len(attachments))
	for _, att := range attachments {
		names = append(names, att.FileName)
	}
	return names
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
