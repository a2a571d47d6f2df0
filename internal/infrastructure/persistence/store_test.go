package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewStore(db)
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx domain.Repositories) error {
		l, err := domain.NewLocation(nil, domain.LocationFields{Name: "A", Address: "B", TimeZone: "UTC"})
		require.NoError(t, err)
		require.NoError(t, tx.Locations().Insert(ctx, l))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	active, err := s.Locations().ListActive(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestInvitations_TenantScopeAndLocations(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()

	inv, err := domain.NewInvitation(&tenantA, "a@x.com", "Ann", "Lee", "employee", "hash", now)
	require.NoError(t, err)
	loc1, loc2 := uuid.New(), uuid.New()
	require.NoError(t, s.Invitations().Insert(ctx, inv, []uuid.UUID{loc1, loc2}))

	got, err := s.Invitations().Get(ctx, &tenantA, inv.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{loc1, loc2}, got.LocationIDs)

	_, err = s.Invitations().Get(ctx, &tenantB, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Invitations().Get(ctx, nil, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvitations_PendingQueries(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tenant := uuid.New()

	fresh, err := domain.NewInvitation(&tenant, "fresh@x.com", "F", "R", "employee", "h1", now)
	require.NoError(t, err)
	require.NoError(t, s.Invitations().Insert(ctx, fresh, nil))
	old, err := domain.NewInvitation(&tenant, "old@x.com", "O", "D", "employee", "h2", now.Add(-8*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, s.Invitations().Insert(ctx, old, nil))
	revoked, err := domain.NewInvitation(&tenant, "gone@x.com", "G", "N", "employee", "h3", now)
	require.NoError(t, err)
	require.NoError(t, revoked.Revoke(now))
	require.NoError(t, s.Invitations().Insert(ctx, revoked, nil))

	pending, err := s.Invitations().ListPending(ctx, &tenant, now)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "fresh@x.com", pending[0].Email)

	all, err := s.Invitations().ListPendingAllTenants(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "expired pending rows are still candidates")

	has, err := s.Invitations().HasPendingForEmail(ctx, &tenant, "old@x.com", now)
	require.NoError(t, err)
	assert.False(t, has)
	has, err = s.Invitations().HasPendingForEmail(ctx, &tenant, "fresh@x.com", now)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestAvailabilities_ListFilterAndOrder(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tenant := uuid.New()
	emp, other := uuid.New(), uuid.New()

	insert := func(a *domain.Availability, err error) *domain.Availability {
		require.NoError(t, err)
		require.NoError(t, s.Availabilities().Insert(ctx, a))
		return a
	}
	wed := insert(domain.NewWeeklyAvailability(&tenant, emp, 3, 540, 1020, true))
	mon := insert(domain.NewWeeklyAvailability(&tenant, emp, 1, 600, 900, true))
	insert(domain.NewWeeklyAvailability(&tenant, other, 1, 480, 600, true))
	trip := insert(domain.NewTimeOffRequest(&tenant, emp,
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), nil))
	insert(domain.NewWeeklyAvailability(nil, emp, 1, 0, 60, true))

	items, total, err := s.Availabilities().List(ctx, &tenant, domain.AvailabilityFilter{EmployeeID: &emp})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, trip.ID, items[0].ID, "time-off rows carry day 0")
	assert.Equal(t, mon.ID, items[1].ID)
	assert.Equal(t, wed.ID, items[2].ID)

	monday := domain.DayOfWeek(1)
	items, total, err = s.Availabilities().List(ctx, &tenant, domain.AvailabilityFilter{DayOfWeek: &monday})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	from := time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)
	items, _, err = s.Availabilities().List(ctx, &tenant, domain.AvailabilityFilter{TimeOffStartDate: &from, TimeOffEndDate: &to})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, trip.ID, items[0].ID)

	items, total, err = s.Availabilities().List(ctx, &tenant, domain.AvailabilityFilter{Skip: 1, Max: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, items, 2)

	weekly, err := s.Availabilities().ListWeekly(ctx, &tenant, emp)
	require.NoError(t, err)
	assert.Len(t, weekly, 2)
	timeOff, err := s.Availabilities().ListTimeOff(ctx, &tenant, emp)
	require.NoError(t, err)
	assert.Len(t, timeOff, 1)
}

func TestAvailabilities_SoftDelete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	a, err := domain.NewWeeklyAvailability(nil, uuid.New(), 2, 0, 60, true)
	require.NoError(t, err)
	require.NoError(t, s.Availabilities().Insert(ctx, a))

	require.NoError(t, s.Availabilities().Delete(ctx, nil, a.ID))
	_, err = s.Availabilities().Get(ctx, nil, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Availabilities().Delete(ctx, nil, a.ID), domain.ErrNotFound)
}

func TestLocations_ListFilterSortPage(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tenant := uuid.New()
	ny := "NY"
	for _, f := range []domain.LocationFields{
		{Name: "Harbor", Address: "1 Pier Rd", TimeZone: "America/New_York", JurisdictionCode: &ny},
		{Name: "Airport", Address: "Terminal 2", TimeZone: "America/New_York", JurisdictionCode: &ny},
		{Name: "Central", Address: "5 Harbor St", TimeZone: "Europe/London"},
	} {
		l, err := domain.NewLocation(&tenant, f)
		require.NoError(t, err)
		require.NoError(t, s.Locations().Insert(ctx, l))
	}
	closed, err := domain.NewLocation(&tenant, domain.LocationFields{Name: "Zed", Address: "Z", TimeZone: "UTC"})
	require.NoError(t, err)
	closed.SetActive(false)
	require.NoError(t, s.Locations().Insert(ctx, closed))

	p, err := s.Locations().List(ctx, &tenant, domain.LocationFilter{Filter: "harbor"})
	require.NoError(t, err)
	assert.EqualValues(t, 4, p.TotalCount)
	assert.EqualValues(t, 2, p.FilteredCount)
	require.Len(t, p.Items, 2)
	assert.Equal(t, "Central", p.Items[0].Name)
	assert.Equal(t, "Harbor", p.Items[1].Name)

	p, err = s.Locations().List(ctx, &tenant, domain.LocationFilter{Sorting: "name desc", Max: 2})
	require.NoError(t, err)
	require.Len(t, p.Items, 2)
	assert.Equal(t, "Zed", p.Items[0].Name)
	assert.Equal(t, "Harbor", p.Items[1].Name)

	inactive := false
	p, err = s.Locations().List(ctx, &tenant, domain.LocationFilter{IsActive: &inactive, Sorting: "bogus; DROP TABLE"})
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "Zed", p.Items[0].Name)

	byCode, err := s.Locations().ListByJurisdiction(ctx, &tenant, "NY")
	require.NoError(t, err)
	assert.Len(t, byCode, 2)
	byZone, err := s.Locations().ListByTimeZone(ctx, &tenant, "Europe/London")
	require.NoError(t, err)
	assert.Len(t, byZone, 1)
	active, err := s.Locations().ListActive(ctx, &tenant)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	count, err := s.Locations().CountByIDs(ctx, &tenant, []uuid.UUID{closed.ID, uuid.New()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestUsers_ListByRolesSkipsEmptyEmail(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tenant := uuid.New()
	for _, u := range []domain.User{
		{TenantID: &tenant, Email: "boss@x.com", Role: "manager"},
		{TenantID: &tenant, Email: "", Role: "admin"},
		{TenantID: &tenant, Email: "emp@x.com", Role: "employee"},
		{Email: "host@x.com", Role: "admin"},
	} {
		u := u
		require.NoError(t, s.Users().Insert(ctx, &u))
	}
	users, err := s.Users().ListByRoles(ctx, &tenant, "manager", "admin")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "boss@x.com", users[0].Email)

	exists, err := s.Users().EmailExists(ctx, &tenant, "emp@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.Users().EmailExists(ctx, nil, "emp@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOutbox_ClaimRetryAndPurge(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	repo := s.Outbox()

	m, err := domain.NewOutboxMessage(nil, domain.KindTimeOffRequested, map[string]string{"k": "v"}, now)
	require.NoError(t, err)
	require.NoError(t, repo.Enqueue(ctx, m))
	later, err := domain.NewOutboxMessage(nil, domain.KindTimeOffApproved, map[string]string{}, now.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Enqueue(ctx, later))

	claimed, err := repo.ClaimDue(ctx, now, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, m.ID, claimed[0].ID)

	again, err := repo.ClaimDue(ctx, now.Add(30*time.Second), time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, again, "leased rows are not claimed twice")

	reclaimed, err := repo.ClaimDue(ctx, now.Add(2*time.Minute), time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, reclaimed, 1, "expired lease is reclaimed")

	require.NoError(t, repo.MarkRetry(ctx, m.ID, 1, now.Add(5*time.Minute), "smtp down"))
	backlog, err := repo.CountBacklog(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, backlog)

	require.NoError(t, repo.MarkSent(ctx, m.ID, now))
	require.NoError(t, repo.MarkFailed(ctx, later.ID, 8, "gave up"))
	backlog, err = repo.CountBacklog(ctx)
	require.NoError(t, err)
	assert.Zero(t, backlog)

	purged, err := repo.PurgeSent(ctx, now.Add(time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)
}
