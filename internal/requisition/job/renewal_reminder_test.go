package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"github.com/emagodi/contracts/internal/requisition/repository"
	"github.com/emagodi/contracts/internal/requisition/service"
	"github.com/emagodi/contracts/internal/requisition/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLister struct {
	items []entity.Requisition
	err   error
	block chan struct{}
	ready chan struct{}
}

func (f *fakeLister) RenewalDue(ctx context.Context, now time.Time) ([]entity.Requisition, error) {
	if f.block != nil {
		close(f.ready)
		<-f.block
	}
	return f.items, f.err
}

type fakeDirectory struct {
	users []entity.User
	calls int
	role  string
}

func (f *fakeDirectory) UsersByRole(ctx context.Context, role string) ([]entity.User, error) {
	f.calls++
	f.role = role
	return f.users, nil
}

type fakeQueue struct {
	mu   sync.Mutex
	sent map[string]string
	fail map[string]bool
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{sent: map[string]string{}, fail: map[string]bool{}}
}

func (q *fakeQueue) Enqueue(ctx context.Context, destination, message string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fail[destination] {
		return errors.New("gateway timeout")
	}
	q.sent[destination] = message
	return nil
}

type denyLocker struct{}

func (denyLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	return func() {}, false, nil
}

func dueItems(n int) []entity.Requisition {
	items := make([]entity.Requisition, n)
	for i := range items {
		items[i].ID = string(rune('a' + i))
	}
	return items
}

func TestRun_NothingDueSkipsDirectory(t *testing.T) {
	dir := &fakeDirectory{}
	q := newFakeQueue()
	r := NewRenewalReminder(&fakeLister{err: repository.ErrNotFound}, dir, q, zap.NewNop())

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Expiring)
	assert.Zero(t, dir.calls)
	assert.Empty(t, q.sent)
}

func TestRun_QueuesOneMessagePerRecipient(t *testing.T) {
	dir := &fakeDirectory{users: []entity.User{
		{ID: "u1", Phone: "+263771000001"},
		{ID: "u2", Phone: "+263771000002"},
	}}
	q := newFakeQueue()
	r := NewRenewalReminder(&fakeLister{items: dueItems(3)}, dir, q, zap.NewNop())

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunResult{Expiring: 3, Recipients: 2, Queued: 2}, res)
	assert.Equal(t, entity.RoleCompanySecretary, dir.role)
	assert.Equal(t,
		"There are 3 contract(s) expiring within the next 7 days. Please take action.",
		q.sent["+263771000001"])
	assert.Equal(t, q.sent["+263771000001"], q.sent["+263771000002"])
}

func TestRun_FailedRecipientDoesNotBlockOthers(t *testing.T) {
	dir := &fakeDirectory{users: []entity.User{
		{ID: "u1", Phone: "+1"},
		{ID: "u2", Phone: "+2"},
		{ID: "u3", Phone: ""},
		{ID: "u4", Phone: "+4"},
	}}
	q := newFakeQueue()
	q.fail["+2"] = true
	r := NewRenewalReminder(&fakeLister{items: dueItems(1)}, dir, q, zap.NewNop())

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Queued)
	assert.Equal(t, 2, res.Failed)
	assert.Contains(t, q.sent, "+1")
	assert.Contains(t, q.sent, "+4")
}

func TestRun_NoRecipients(t *testing.T) {
	dir := &fakeDirectory{}
	q := newFakeQueue()
	r := NewRenewalReminder(&fakeLister{items: dueItems(2)}, dir, q, zap.NewNop())
	r.SetRole(entity.RoleManagingDirector)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Expiring)
	assert.Zero(t, res.Recipients)
	assert.Equal(t, entity.RoleManagingDirector, dir.role)
	assert.Empty(t, q.sent)
}

func TestRun_QueryFailure(t *testing.T) {
	r := NewRenewalReminder(&fakeLister{err: errors.New("db down")}, &fakeDirectory{}, newFakeQueue(), zap.NewNop())
	_, err := r.Run(context.Background())
	assert.Error(t, err)
}

func TestRun_OverlappingRunIsRejected(t *testing.T) {
	lister := &fakeLister{items: dueItems(1), block: make(chan struct{}), ready: make(chan struct{})}
	r := NewRenewalReminder(lister, &fakeDirectory{}, newFakeQueue(), zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background())
		done <- err
	}()
	<-lister.ready

	res, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.True(t, res.Skipped)

	close(lister.block)
	require.NoError(t, <-done)
}

func TestRun_DistributedLockHeldElsewhere(t *testing.T) {
	dir := &fakeDirectory{}
	r := NewRenewalReminder(&fakeLister{items: dueItems(1)}, dir, newFakeQueue(), zap.NewNop())
	r.SetLocker(denyLocker{})

	res, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.True(t, res.Skipped)
	assert.Zero(t, dir.calls)
}

func TestRun_AgainstDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	due := service.NewDueDateService(repos.Requisition)

	testutil.SeedRequisition(t, db, &entity.Requisition{
		EndDate:           testutil.Date(2025, 1, 5),
		IsRenewable:       entity.Yes,
		RequisitionStatus: entity.RequisitionStatusContract,
	})
	testutil.SeedUser(t, db, "u1", "Company Secretary", "cs@example.com", "+263771000009", entity.RoleCompanySecretary)
	testutil.SeedUser(t, db, "u2", "Finance", "fd@example.com", "+263771000010", entity.RoleFinanceDirector)

	q := newFakeQueue()
	r := NewRenewalReminder(due, repos.User, q, zap.NewNop())
	r.SetClock(func() time.Time { return time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC) })

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Expiring)
	assert.Equal(t, 1, res.Queued)
	assert.Equal(t, ReminderMessage(1), q.sent["+263771000009"])
	assert.NotContains(t, q.sent, "+263771000010")
}

func TestSchedule(t *testing.T) {
	r := NewRenewalReminder(&fakeLister{}, &fakeDirectory{}, newFakeQueue(), zap.NewNop())

	c, err := r.Schedule("", time.UTC)
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)

	_, err = r.Schedule("every now and then", time.UTC)
	assert.Error(t, err)
}
