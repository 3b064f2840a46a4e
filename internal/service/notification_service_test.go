package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
)

type sentEmail struct {
	To       string
	Template string
	Vars     map[string]string
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
	fail error
}

func (s *fakeEmailSender) SendEmail(_ context.Context, to, template string, vars map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, sentEmail{To: to, Template: template, Vars: vars})
	return nil
}

type fakeWhatsAppSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *fakeWhatsAppSender) SendWhatsApp(_ context.Context, to, _ string, _ []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	return nil
}

func newNotificationEnv(t *testing.T) (*fakeUserRepo, *fakeRoleRepo, *fakeEmailSender, *fakeWhatsAppSender, *captureDispatcher) {
	t.Helper()
	users := newFakeUserRepo()
	roles := newFakeRoleRepo()
	email := &fakeEmailSender{}
	whatsapp := &fakeWhatsAppSender{}
	dispatcher := newCaptureDispatcher()

	svc := NewNotificationService(users, roles, email, whatsapp, nopLogger())
	svc.RegisterHandlers(dispatcher)
	return users, roles, email, whatsapp, dispatcher
}

func TestAssignmentNotifiesAssignee(t *testing.T) {
	users, _, email, whatsapp, dispatcher := newNotificationEnv(t)
	ctx := context.Background()

	assignee := &domain.User{Name: "Dana", Email: "dana@example.com", Phone: "+4915112345", Status: domain.UserStatusActive}
	require.NoError(t, users.Create(ctx, assignee))

	err := dispatcher.Publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		EntityID: "ticket-1",
		Payload:  events.TicketAssignedPayload{AssigneeID: assignee.ID},
	})
	require.NoError(t, err)

	require.Len(t, email.sent, 1)
	assert.Equal(t, "dana@example.com", email.sent[0].To)
	assert.Equal(t, "ticket_assigned", email.sent[0].Template)
	assert.Equal(t, "ticket-1", email.sent[0].Vars["ticket_id"])

	require.Len(t, whatsapp.sent, 1)
	assert.Equal(t, "+4915112345", whatsapp.sent[0])
}

func TestAssignmentWithoutPhoneSkipsWhatsApp(t *testing.T) {
	users, _, email, whatsapp, dispatcher := newNotificationEnv(t)
	ctx := context.Background()

	assignee := &domain.User{Name: "Dana", Email: "dana@example.com", Status: domain.UserStatusActive}
	require.NoError(t, users.Create(ctx, assignee))

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:    events.EventTicketAssigned,
		Payload: events.TicketAssignedPayload{AssigneeID: assignee.ID},
	}))
	assert.Len(t, email.sent, 1)
	assert.Empty(t, whatsapp.sent)
}

func TestAssignmentUnknownAssigneeIsSilent(t *testing.T) {
	_, _, email, _, dispatcher := newNotificationEnv(t)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventTicketAssigned,
		Payload: events.TicketAssignedPayload{AssigneeID: "user-missing"},
	})
	require.NoError(t, err)
	assert.Empty(t, email.sent)
}

func TestLowStockEmailsActiveManagers(t *testing.T) {
	users, roles, email, _, dispatcher := newNotificationEnv(t)
	ctx := context.Background()

	managerRole := &domain.Role{Code: domain.RoleCodeManager, Name: "Manager", Level: 50}
	engineerRole := &domain.Role{Code: domain.RoleCodeEngineer, Name: "Engineer", Level: 20}
	require.NoError(t, roles.Create(ctx, managerRole))
	require.NoError(t, roles.Create(ctx, engineerRole))

	active := &domain.User{Name: "m1", Email: "m1@example.com", RoleID: managerRole.ID, Status: domain.UserStatusActive}
	inactive := &domain.User{Name: "m2", Email: "m2@example.com", RoleID: managerRole.ID, Status: domain.UserStatusInactive}
	engineer := &domain.User{Name: "e1", Email: "e1@example.com", RoleID: engineerRole.ID, Status: domain.UserStatusActive}
	for _, u := range []*domain.User{active, inactive, engineer} {
		require.NoError(t, users.Create(ctx, u))
	}

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:    events.EventInventoryLowStock,
		Payload: events.LowStockPayload{SKU: "CBL-001", Name: "patch cable", Quantity: 1},
	}))

	require.Len(t, email.sent, 1, "only the active manager gets the notice")
	assert.Equal(t, "m1@example.com", email.sent[0].To)
	assert.Equal(t, "inventory_low_stock", email.sent[0].Template)
	assert.Equal(t, "1", email.sent[0].Vars["quantity"])
}

func TestLowStockWithoutManagerRoleIsSilent(t *testing.T) {
	_, _, email, _, dispatcher := newNotificationEnv(t)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventInventoryLowStock,
		Payload: events.LowStockPayload{SKU: "CBL-001", Quantity: 0},
	}))
	assert.Empty(t, email.sent)
}
