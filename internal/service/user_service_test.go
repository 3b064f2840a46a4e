package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
)

type userEnv struct {
	users  *fakeUserRepo
	roles  *fakeRoleRepo
	audits *fakeAuditRepo
	svc    *UserService
	admin  Actor
	roleID string
}

func newUserEnv(t *testing.T) *userEnv {
	t.Helper()
	env := &userEnv{users: newFakeUserRepo(), roles: newFakeRoleRepo(), audits: &fakeAuditRepo{}}
	ctx := context.Background()

	adminRole := &domain.Role{Code: domain.RoleCodeSuperAdmin, Name: "Super Administrator", Level: 100, Unrestricted: true}
	engineerRole := &domain.Role{Code: domain.RoleCodeEngineer, Name: "Engineer", Level: 20}
	require.NoError(t, env.roles.Create(ctx, adminRole))
	require.NoError(t, env.roles.Create(ctx, engineerRole))
	env.roleID = engineerRole.ID

	adminUser := &domain.User{Name: "admin", Email: "admin@example.com", RoleID: adminRole.ID, Status: domain.UserStatusActive}
	require.NoError(t, env.users.Create(ctx, adminUser))
	env.admin = Actor{UserID: adminUser.ID, RoleID: adminRole.ID}

	env.svc = NewUserService(env.users, env.roles, authz.NewEvaluator(env.roles),
		NewAuditRecorder(env.audits, nopLogger()), nopLogger(), bcrypt.MinCost)
	return env
}

func TestCreateUserHashesPassword(t *testing.T) {
	env := newUserEnv(t)

	user, err := env.svc.Create(context.Background(), env.admin, UserCreateInput{
		Name:     "Dana",
		Email:    "  Dana@Example.COM ",
		Password: "correct horse",
		RoleID:   env.roleID,
	})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.Equal(t, domain.UserStatusActive, user.Status)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "correct horse"))

	// The audit snapshot must never carry the hash.
	entry := env.audits.last()
	require.NotNil(t, entry)
	assert.NotContains(t, entry.NewState, "PasswordHash")
	assert.NotContains(t, entry.NewState, "password_hash")
}

func TestCreateUserShortPassword(t *testing.T) {
	env := newUserEnv(t)
	_, err := env.svc.Create(context.Background(), env.admin, UserCreateInput{
		Name: "Dana", Email: "dana@example.com", Password: "short", RoleID: env.roleID,
	})
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)
}

func TestCreateUserUnknownRole(t *testing.T) {
	env := newUserEnv(t)
	_, err := env.svc.Create(context.Background(), env.admin, UserCreateInput{
		Name: "Dana", Email: "dana@example.com", Password: "correct horse", RoleID: "role-missing",
	})
	assert.Equal(t, "NOT_FOUND", domainErr(t, err).Code)
}

func TestDeleteOwnAccountRejected(t *testing.T) {
	env := newUserEnv(t)
	err := env.svc.Delete(context.Background(), env.admin, env.admin.UserID)
	assert.Equal(t, "VALIDATION_FAILED", domainErr(t, err).Code)
}

func TestDeleteUserWithTicketsDeactivates(t *testing.T) {
	env := newUserEnv(t)
	user, err := env.svc.Create(context.Background(), env.admin, UserCreateInput{
		Name: "Dana", Email: "dana@example.com", Password: "correct horse", RoleID: env.roleID,
	})
	require.NoError(t, err)
	env.users.ticketCount[user.ID] = 4

	require.NoError(t, env.svc.Delete(context.Background(), env.admin, user.ID))

	stored, err := env.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err, "account with history must survive as a row")
	assert.Equal(t, domain.UserStatusInactive, stored.Status)

	entry := env.audits.last()
	require.NotNil(t, entry)
	assert.Equal(t, domain.AuditActionUpdate, entry.Action)
}

func TestDeleteUserWithoutTickets(t *testing.T) {
	env := newUserEnv(t)
	user, err := env.svc.Create(context.Background(), env.admin, UserCreateInput{
		Name: "Dana", Email: "dana@example.com", Password: "correct horse", RoleID: env.roleID,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(context.Background(), env.admin, user.ID))
	_, err = env.users.GetByID(context.Background(), user.ID)
	assert.Error(t, err)

	entry := env.audits.last()
	require.NotNil(t, entry)
	assert.Equal(t, domain.AuditActionDelete, entry.Action)
	assert.Nil(t, entry.NewState)
}

func TestUpdateUserPartial(t *testing.T) {
	env := newUserEnv(t)
	user, err := env.svc.Create(context.Background(), env.admin, UserCreateInput{
		Name: "Dana", Email: "dana@example.com", Phone: "111", Password: "correct horse", RoleID: env.roleID,
	})
	require.NoError(t, err)

	newPhone := "222"
	updated, err := env.svc.Update(context.Background(), env.admin, user.ID, UserUpdateInput{Phone: &newPhone})
	require.NoError(t, err)
	assert.Equal(t, "222", updated.Phone)
	assert.Equal(t, "Dana", updated.Name, "unset fields stay untouched")
}

func TestUpdateUserUnknownRole(t *testing.T) {
	env := newUserEnv(t)
	user, err := env.svc.Create(context.Background(), env.admin, UserCreateInput{
		Name: "Dana", Email: "dana@example.com", Password: "correct horse", RoleID: env.roleID,
	})
	require.NoError(t, err)

	missing := "role-missing"
	_, err = env.svc.Update(context.Background(), env.admin, user.ID, UserUpdateInput{RoleID: &missing})
	assert.Equal(t, "NOT_FOUND", domainErr(t, err).Code)
}
