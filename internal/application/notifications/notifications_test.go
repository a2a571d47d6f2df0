package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/infrastructure/database"
	"easyshifthq-backend/internal/infrastructure/persistence"
	"easyshifthq-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type mail struct{ to, subject, html string }

type captureSender struct {
	mu     sync.Mutex
	sent   []mail
	failTo map[string]bool
}

func (c *captureSender) Send(ctx context.Context, to, subject, html string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failTo[to] {
		return errors.New("smtp: mailbox unavailable")
	}
	c.sent = append(c.sent, mail{to, subject, html})
	return nil
}

func (c *captureSender) recipients() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sent))
	for _, m := range c.sent {
		out = append(out, m.to)
	}
	return out
}

type fixture struct {
	store  *persistence.Store
	sender *captureSender
	disp   *Dispatcher
	tenant uuid.UUID
	now    time.Time
}

func setupNotificationsTest(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	store := persistence.NewStore(db)
	sender := &captureSender{failTo: map[string]bool{}}
	return &fixture{
		store:  store,
		sender: sender,
		disp:   &Dispatcher{Users: store.Users(), Sender: sender, PortalURL: "https://app.easyshifthq.test/availability"},
		tenant: uuid.New(),
		now:    t0,
	}
}

func (f *fixture) user(t *testing.T, email, first, role string) domain.User {
	t.Helper()
	tenant := f.tenant
	u := domain.User{TenantID: &tenant, Email: email, FirstName: first, LastName: "Doe", Role: role}
	require.NoError(t, f.store.Users().Insert(context.Background(), &u))
	return u
}

func (f *fixture) enqueue(t *testing.T, kind domain.NotificationKind, payload any) *domain.OutboxMessage {
	t.Helper()
	tenant := f.tenant
	m, err := domain.NewOutboxMessage(&tenant, kind, payload, f.now)
	require.NoError(t, err)
	require.NoError(t, f.store.Outbox().Enqueue(context.Background(), m))
	return m
}

func (f *fixture) worker() *Worker {
	return &Worker{
		Outbox:      f.store.Outbox(),
		Handler:     f.disp,
		MaxAttempts: 3,
		Retention:   24 * time.Hour,
		Now:         func() time.Time { return f.now },
	}
}

func requested(employee uuid.UUID) domain.TimeOffRequested {
	return domain.TimeOffRequested{
		AvailabilityID: uuid.New(),
		EmployeeID:     employee,
		EmployeeName:   "Eve Doe",
		StartDate:      time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC),
		CreationTime:   t0,
	}
}

func TestDispatch_RequestedMailsApprovers(t *testing.T) {
	f := setupNotificationsTest(t)
	ctx := context.Background()
	emp := f.user(t, "eve@acme.test", "Eve", constants.Employee)
	f.user(t, "mia@acme.test", "Mia", constants.Manager)
	f.user(t, "ada@acme.test", "Ada", constants.Admin)
	f.enqueue(t, domain.KindTimeOffRequested, requested(emp.ID))

	n, err := f.worker().DispatchPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.ElementsMatch(t, []string{"mia@acme.test", "ada@acme.test"}, f.sender.recipients())
	assert.Contains(t, f.sender.sent[0].html, "Eve Doe")

	backlog, err := f.store.Outbox().CountBacklog(ctx)
	require.NoError(t, err)
	assert.Zero(t, backlog)
}

func TestDispatch_PartialRecipientFailureStillSent(t *testing.T) {
	f := setupNotificationsTest(t)
	emp := f.user(t, "eve@acme.test", "Eve", constants.Employee)
	f.user(t, "mia@acme.test", "Mia", constants.Manager)
	f.user(t, "ada@acme.test", "Ada", constants.Admin)
	f.sender.failTo["mia@acme.test"] = true
	m := f.enqueue(t, domain.KindTimeOffRequested, requested(emp.ID))

	require.NoError(t, f.disp.Handle(context.Background(), m))
	assert.Equal(t, []string{"ada@acme.test"}, f.sender.recipients())
}

func TestDispatch_DecisionMailsEmployeeWithApproverName(t *testing.T) {
	f := setupNotificationsTest(t)
	emp := f.user(t, "eve@acme.test", "Eve", constants.Employee)
	mgr := f.user(t, "mia@acme.test", "Mia", constants.Manager)

	f.enqueue(t, domain.KindTimeOffDenied, domain.TimeOffDenied{
		EmployeeID:   emp.ID,
		ApproverID:   mgr.ID,
		StartDate:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		DenialReason: "inventory week",
		DenialDate:   t0,
	})
	_, err := f.worker().DispatchPending(context.Background())
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 1)
	got := f.sender.sent[0]
	assert.Equal(t, "eve@acme.test", got.to)
	assert.Equal(t, "Your Time Off Request Has Been Declined", got.subject)
	assert.Contains(t, got.html, "Mia Doe")
	assert.Contains(t, got.html, "inventory week")
}

func TestDispatch_RetriesWithBackoffThenFails(t *testing.T) {
	f := setupNotificationsTest(t)
	ctx := context.Background()
	emp := f.user(t, "eve@acme.test", "Eve", constants.Employee)
	f.user(t, "mia@acme.test", "Mia", constants.Manager)
	f.sender.failTo["mia@acme.test"] = true
	f.enqueue(t, domain.KindTimeOffRequested, requested(emp.ID))
	w := f.worker()

	n, err := w.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// not due until the first backoff elapses
	n, err = w.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	backlog, err := f.store.Outbox().CountBacklog(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, backlog)

	f.now = f.now.Add(Backoff(1))
	_, err = w.DispatchPending(ctx)
	require.NoError(t, err)
	f.now = f.now.Add(Backoff(2))
	_, err = w.DispatchPending(ctx)
	require.NoError(t, err)

	backlog, err = f.store.Outbox().CountBacklog(ctx)
	require.NoError(t, err)
	assert.Zero(t, backlog, "message should be marked failed after max attempts")
}

func TestDispatch_UnknownKindFailsImmediately(t *testing.T) {
	f := setupNotificationsTest(t)
	ctx := context.Background()
	f.enqueue(t, domain.NotificationKind("shift.swapped"), map[string]string{"x": "y"})

	_, err := f.worker().DispatchPending(ctx)
	require.NoError(t, err)
	backlog, err := f.store.Outbox().CountBacklog(ctx)
	require.NoError(t, err)
	assert.Zero(t, backlog)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 30*time.Second, Backoff(1))
	assert.Equal(t, 2*time.Minute, Backoff(2))
	assert.Equal(t, 270*time.Second, Backoff(3))
}

func TestPurgeSent(t *testing.T) {
	f := setupNotificationsTest(t)
	ctx := context.Background()
	emp := f.user(t, "eve@acme.test", "Eve", constants.Employee)
	f.user(t, "mia@acme.test", "Mia", constants.Manager)
	f.enqueue(t, domain.KindTimeOffRequested, requested(emp.ID))
	w := f.worker()

	_, err := w.DispatchPending(ctx)
	require.NoError(t, err)

	n, err := w.PurgeSent(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.now = f.now.Add(25 * time.Hour)
	n, err = w.PurgeSent(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestStart_RejectsNonPositiveInterval(t *testing.T) {
	f := setupNotificationsTest(t)
	_, err := f.worker().Start(0)
	assert.Error(t, err)
}
