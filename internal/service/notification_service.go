package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/notify"
	"github.com/spec-kit/support-desk/internal/repository"
)

// NotificationService turns domain events into outbound email and WhatsApp
// messages. Delivery failures are logged and never surface to the caller.
type NotificationService struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	email    notify.EmailSender
	whatsapp notify.WhatsAppSender
	logger   *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(users repository.UserRepository, roles repository.RoleRepository, email notify.EmailSender, whatsapp notify.WhatsAppSender, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		users:    users,
		roles:    roles,
		email:    email,
		whatsapp: whatsapp,
		logger:   logger,
	}
}

// RegisterHandlers subscribes to the events that trigger outbound messages.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketAssigned, s.onTicketAssigned)
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.onTicketStatusChanged)
	dispatcher.Subscribe(events.EventInstallationScheduled, s.onInstallationScheduled)
	dispatcher.Subscribe(events.EventInventoryLowStock, s.onLowStock)
}

func (s *NotificationService) onTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	assignee, err := s.users.GetByID(ctx, payload.AssigneeID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("assignee lookup failed", zap.Error(err))
		}
		return nil
	}

	if err := s.email.SendEmail(ctx, assignee.Email, "ticket_assigned", map[string]string{
		"name":      assignee.Name,
		"ticket_id": event.EntityID,
	}); err != nil {
		s.logger.Warn("assignment email failed",
			zap.String("ticket_id", event.EntityID), zap.Error(err))
	}
	if assignee.Phone != "" {
		if err := s.whatsapp.SendWhatsApp(ctx, assignee.Phone, "ticket_assigned",
			[]string{assignee.Name, event.EntityID}); err != nil {
			s.logger.Warn("assignment whatsapp failed",
				zap.String("ticket_id", event.EntityID), zap.Error(err))
		}
	}
	return nil
}

func (s *NotificationService) onTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	s.logger.Info("ticket status changed",
		zap.String("ticket_id", event.EntityID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))
	return nil
}

func (s *NotificationService) onInstallationScheduled(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.InstallationPayload)
	if !ok {
		return nil
	}
	s.logger.Info("installation scheduled",
		zap.String("request_id", event.EntityID),
		zap.String("request_number", payload.RequestNumber))
	return nil
}

func (s *NotificationService) onLowStock(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.LowStockPayload)
	if !ok {
		return nil
	}
	s.logger.Warn("item below stock threshold",
		zap.String("sku", payload.SKU),
		zap.Int("quantity", payload.Quantity))

	// Managers get the restock nudge by email.
	managerRole, err := s.roles.GetByCode(ctx, domain.RoleCodeManager)
	if err != nil {
		s.logger.Warn("manager role lookup failed", zap.Error(err))
		return nil
	}
	users, err := s.users.List(ctx, repository.UserFilter{RoleID: &managerRole.ID, Limit: 100})
	if err != nil {
		s.logger.Warn("user list for low-stock notice failed", zap.Error(err))
		return nil
	}
	body := map[string]string{
		"sku":      payload.SKU,
		"item":     payload.Name,
		"quantity": fmt.Sprintf("%d", payload.Quantity),
	}
	for _, user := range users {
		if !user.IsActive() {
			continue
		}
		if err := s.email.SendEmail(ctx, user.Email, "inventory_low_stock", body); err != nil {
			s.logger.Warn("low-stock email failed",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return nil
}
