package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
)

type installationEnv struct {
	installations *fakeInstallationRepo
	customers     *fakeCustomerRepo
	users         *fakeUserRepo
	audits        *fakeAuditRepo
	dispatcher    *captureDispatcher
	uploader      *fakeUploader
	svc           *InstallationService

	admin      Actor
	customerID string
	techID     string
}

func newInstallationEnv(t *testing.T) *installationEnv {
	t.Helper()
	env := &installationEnv{
		installations: newFakeInstallationRepo(),
		customers:     newFakeCustomerRepo(),
		users:         newFakeUserRepo(),
		audits:        &fakeAuditRepo{},
		dispatcher:    newCaptureDispatcher(),
		uploader:      &fakeUploader{},
	}
	ctx := context.Background()

	roles := newFakeRoleRepo()
	adminRole := &domain.Role{Code: domain.RoleCodeSuperAdmin, Name: "Super Administrator", Level: 100, Unrestricted: true}
	require.NoError(t, roles.Create(ctx, adminRole))

	admin := &domain.User{Name: "admin", Email: "admin@example.com", RoleID: adminRole.ID, Status: domain.UserStatusActive}
	require.NoError(t, env.users.Create(ctx, admin))
	tech := &domain.User{Name: "tech", Email: "tech@example.com", RoleID: adminRole.ID, Status: domain.UserStatusActive}
	require.NoError(t, env.users.Create(ctx, tech))
	env.techID = tech.ID
	env.admin = Actor{UserID: admin.ID, RoleID: adminRole.ID}

	customer := &domain.Customer{Name: "Acme"}
	require.NoError(t, env.customers.Create(ctx, customer))
	env.customerID = customer.ID

	env.svc = NewInstallationService(env.installations, env.customers, env.users,
		authz.NewEvaluator(roles), NewAuditRecorder(env.audits, nopLogger()),
		env.uploader, env.dispatcher)
	return env
}

func (env *installationEnv) createRequest(t *testing.T) *domain.InstallationRequest {
	t.Helper()
	req, err := env.svc.Create(context.Background(), env.admin, InstallationCreateInput{
		CustomerID:  env.customerID,
		Description: "mount the new access point",
	})
	require.NoError(t, err)
	return req
}

func TestCreateInstallationRequest(t *testing.T) {
	env := newInstallationEnv(t)
	req := env.createRequest(t)

	assert.True(t, strings.HasPrefix(req.RequestNumber, "INS-"))
	assert.Equal(t, domain.InstallationStatusRequested, req.Status)
	assert.Equal(t, env.admin.UserID, req.CreatedBy)
}

func TestCreateInstallationUnknownCustomer(t *testing.T) {
	env := newInstallationEnv(t)
	_, err := env.svc.Create(context.Background(), env.admin, InstallationCreateInput{
		CustomerID: "cust-missing", Description: "x",
	})
	assert.Equal(t, "NOT_FOUND", domainErr(t, err).Code)
}

func TestScheduleInstallation(t *testing.T) {
	env := newInstallationEnv(t)
	req := env.createRequest(t)
	when := time.Now().Add(48 * time.Hour)

	updated, err := env.svc.Schedule(context.Background(), env.admin, req.ID, env.techID, when)
	require.NoError(t, err)
	assert.Equal(t, domain.InstallationStatusScheduled, updated.Status)
	require.NotNil(t, updated.TechnicianID)
	assert.Equal(t, env.techID, *updated.TechnicianID)

	scheduled := env.dispatcher.ofType(events.EventInstallationScheduled)
	require.Len(t, scheduled, 1)

	// Rescheduling a SCHEDULED request is allowed.
	later := when.Add(24 * time.Hour)
	updated, err = env.svc.Schedule(context.Background(), env.admin, req.ID, env.techID, later)
	require.NoError(t, err)
	assert.True(t, updated.ScheduledFor.Equal(later))
}

func TestSchedulePastDateRejected(t *testing.T) {
	env := newInstallationEnv(t)
	req := env.createRequest(t)

	_, err := env.svc.Schedule(context.Background(), env.admin, req.ID, env.techID, time.Now().Add(-time.Hour))
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)
}

func TestScheduleInactiveTechnician(t *testing.T) {
	env := newInstallationEnv(t)
	req := env.createRequest(t)
	tech, err := env.users.GetByID(context.Background(), env.techID)
	require.NoError(t, err)
	tech.Status = domain.UserStatusInactive
	require.NoError(t, env.users.Update(context.Background(), tech))

	_, err = env.svc.Schedule(context.Background(), env.admin, req.ID, env.techID, time.Now().Add(time.Hour))
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)
}

func TestCompleteRequiresSchedule(t *testing.T) {
	env := newInstallationEnv(t)
	req := env.createRequest(t)

	_, err := env.svc.Complete(context.Background(), env.admin, req.ID, AttachmentInput{
		FileName: "site.jpg", Content: strings.NewReader("jpeg"),
	})
	assert.Equal(t, "INVALID_TRANSITION", domainErr(t, err).Code)
}

func TestCompleteRequiresPhoto(t *testing.T) {
	env := newInstallationEnv(t)
	req := env.createRequest(t)
	_, err := env.svc.Schedule(context.Background(), env.admin, req.ID, env.techID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = env.svc.Complete(context.Background(), env.admin, req.ID, AttachmentInput{FileName: "site.jpg"})
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)
	assert.Empty(t, env.uploader.uploads)
}

func TestCompleteInstallation(t *testing.T) {
	env := newInstallationEnv(t)
	req := env.createRequest(t)
	_, err := env.svc.Schedule(context.Background(), env.admin, req.ID, env.techID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	updated, err := env.svc.Complete(context.Background(), env.admin, req.ID, AttachmentInput{
		FileName: "site.jpg", MimeType: "image/jpeg", Content: strings.NewReader("jpeg"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InstallationStatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)
	require.NotNil(t, updated.PhotoKey)
	assert.True(t, strings.HasPrefix(*updated.PhotoKey, "installations/"+req.ID+"/"))
	require.Len(t, env.dispatcher.ofType(events.EventInstallationCompleted), 1)
}

func TestCancelCompletedRejected(t *testing.T) {
	env := newInstallationEnv(t)
	req := env.createRequest(t)
	_, err := env.svc.Schedule(context.Background(), env.admin, req.ID, env.techID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = env.svc.Complete(context.Background(), env.admin, req.ID, AttachmentInput{
		FileName: "site.jpg", Content: strings.NewReader("jpeg"),
	})
	require.NoError(t, err)

	_, err = env.svc.Cancel(context.Background(), env.admin, req.ID)
	assert.Equal(t, "INVALID_TRANSITION", domainErr(t, err).Code)
}

func TestCancelRequestedInstallation(t *testing.T) {
	env := newInstallationEnv(t)
	req := env.createRequest(t)

	updated, err := env.svc.Cancel(context.Background(), env.admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InstallationStatusCancelled, updated.Status)
}
