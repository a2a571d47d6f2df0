package tenants

import (
	"context"
	"regexp"
	"testing"

	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/infrastructure/database"
	"easyshifthq-backend/internal/infrastructure/persistence"
	"easyshifthq-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTenantsTest(t *testing.T) (*Service, *persistence.Store) {
	t.Helper()
	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	store := persistence.NewStore(db)
	return &Service{Store: store}, store
}

func hostUser(t *testing.T, store *persistence.Store, email string) domain.Actor {
	t.Helper()
	u := domain.User{Email: email, FirstName: "Lou", LastName: "Ortiz", Role: constants.Employee}
	require.NoError(t, store.Users().Insert(context.Background(), &u))
	return domain.Actor{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func TestGenerateTenantCode(t *testing.T) {
	id := uuid.MustParse("1f0c9b2a-0000-4000-8000-000000000000")
	assert.Equal(t, "AC-1F0C9B", generateTenantCode("acme diner", id))
	assert.Equal(t, "QX-1F0C9B", generateTenantCode("Q-42", id))
	assert.Equal(t, "XX-1F0C9B", generateTenantCode("123", id))
}

func TestCreate_PromotesCreatorToAdmin(t *testing.T) {
	svc, store := setupTenantsTest(t)
	ctx := context.Background()
	actor := hostUser(t, store, "lou@example.com")

	tenant, user, err := svc.Create(ctx, actor, CreateInput{Name: "  Acme Diner "})
	require.NoError(t, err)
	assert.Equal(t, "Acme Diner", tenant.Name)
	assert.Regexp(t, regexp.MustCompile(`^AC-[0-9A-F]{6}$`), tenant.Code)
	assert.Equal(t, constants.Admin, user.Role)
	require.NotNil(t, user.TenantID)
	assert.Equal(t, tenant.ID, *user.TenantID)

	actor.TenantID = user.TenantID
	actor.Role = user.Role
	view, err := svc.GetCurrent(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, view.ID)
	require.Len(t, view.Members, 1)
	assert.Equal(t, "Lou Ortiz", view.Members[0].Fullname)

	_, _, err = svc.Create(ctx, actor, CreateInput{Name: "Second"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreate_Validation(t *testing.T) {
	svc, store := setupTenantsTest(t)
	ctx := context.Background()
	first := hostUser(t, store, "a@example.com")
	second := hostUser(t, store, "b@example.com")

	_, _, err := svc.Create(ctx, first, CreateInput{Name: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = svc.Create(ctx, domain.Actor{}, CreateInput{Name: "Acme"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = svc.Create(ctx, first, CreateInput{Name: "Acme"})
	require.NoError(t, err)
	_, _, err = svc.Create(ctx, second, CreateInput{Name: "Acme"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGetCurrent_NoTenant(t *testing.T) {
	svc, store := setupTenantsTest(t)
	_, err := svc.GetCurrent(context.Background(), hostUser(t, store, "a@example.com"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
