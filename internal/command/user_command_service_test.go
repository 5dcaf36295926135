package command

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/eaglebank/user-directory/internal/repository"
	"github.com/eaglebank/user-directory/shared/cqrs"
	"github.com/eaglebank/user-directory/shared/events"
	"github.com/eaglebank/user-directory/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type publishedEvent struct {
	Type string
	Data any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, eventType string, data any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, publishedEvent{Type: eventType, Data: data})
	return "1-0", nil
}

// failingStore fails every call with err.
type failingStore struct{ err error }

func (s failingStore) FindOne(context.Context, repository.UserFilter) (*models.User, error) {
	return nil, s.err
}
func (s failingStore) Find(context.Context, repository.UserFilter) ([]*models.User, error) {
	return nil, s.err
}
func (s failingStore) Insert(context.Context, *models.User) error { return s.err }
func (s failingStore) FindByIDAndDelete(context.Context, string) (*models.User, error) {
	return nil, s.err
}

// blockingStore waits for the context to end.
type blockingStore struct{ failingStore }

func (blockingStore) FindOne(ctx context.Context, _ repository.UserFilter) (*models.User, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestStore(t *testing.T) repository.UserStore {
	t.Helper()
	db := repository.NewBoltDB(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return repository.NewUserBoltRepository(db)
}

func TestCreateUser(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewUserCommandService(newTestStore(t), pub, time.Second, zap.NewNop())
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, cqrs.CreateUserCommand{FirstName: "Jane", LastName: "Doe", ContactNumber: 555})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, "Doe", user.LastName)
	assert.Equal(t, models.ContactNumber(555), user.ContactNumber)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.UserCreated, pub.events[0].Type)
	assert.Equal(t, events.UserCreatedEvent{UserID: user.ID, FirstName: "Jane", LastName: "Doe", ContactNumber: 555}, pub.events[0].Data)
}

func TestCreateUser_Duplicates(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewUserCommandService(newTestStore(t), pub, time.Second, zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, cqrs.CreateUserCommand{FirstName: "Jane", LastName: "Doe", ContactNumber: 555})
	require.NoError(t, err)

	tests := []struct {
		name string
		cmd  cqrs.CreateUserCommand
	}{
		{"same name pair", cqrs.CreateUserCommand{FirstName: "Jane", LastName: "Doe", ContactNumber: 777}},
		{"same contact number", cqrs.CreateUserCommand{FirstName: "John", LastName: "Doe", ContactNumber: 555}},
		{"both taken", cqrs.CreateUserCommand{FirstName: "Jane", LastName: "Doe", ContactNumber: 555}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tt.cmd)
			assert.ErrorIs(t, err, models.ErrDuplicateUser)
		})
	}

	// A name pair differing only in case is a different pair.
	_, err = svc.CreateUser(ctx, cqrs.CreateUserCommand{FirstName: "jane", LastName: "doe", ContactNumber: 888})
	assert.NoError(t, err)

	assert.Len(t, pub.events, 2)
}

func TestCreateUser_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := NewUserCommandService(failingStore{err: storeErr}, nil, time.Second, zap.NewNop())

	_, err := svc.CreateUser(context.Background(), cqrs.CreateUserCommand{FirstName: "Jane", LastName: "Doe", ContactNumber: 555})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, models.ErrDuplicateUser)
}

func TestCreateUser_Timeout(t *testing.T) {
	svc := NewUserCommandService(blockingStore{}, nil, 10*time.Millisecond, zap.NewNop())

	_, err := svc.CreateUser(context.Background(), cqrs.CreateUserCommand{FirstName: "Jane", LastName: "Doe", ContactNumber: 555})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCreateUser_PublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("redis down")}
	svc := NewUserCommandService(newTestStore(t), pub, time.Second, zap.NewNop())

	user, err := svc.CreateUser(context.Background(), cqrs.CreateUserCommand{FirstName: "Jane", LastName: "Doe", ContactNumber: 555})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestDeleteUser(t *testing.T) {
	pub := &fakePublisher{}
	store := newTestStore(t)
	svc := NewUserCommandService(store, pub, time.Second, zap.NewNop())
	ctx := context.Background()

	jane, err := svc.CreateUser(ctx, cqrs.CreateUserCommand{FirstName: "Jane", LastName: "Doe", ContactNumber: 555})
	require.NoError(t, err)

	deleted, err := svc.DeleteUser(ctx, cqrs.DeleteUserCommand{UserID: jane.ID})
	require.NoError(t, err)
	assert.Equal(t, jane, deleted)

	_, err = svc.DeleteUser(ctx, cqrs.DeleteUserCommand{UserID: jane.ID})
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	users, err := store.Find(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Empty(t, users)

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.UserDeleted, pub.events[1].Type)
	assert.Equal(t, events.UserDeletedEvent{UserID: jane.ID}, pub.events[1].Data)
}

func TestDeleteUser_MalformedID(t *testing.T) {
	// The store is never reached for an id that could not have been assigned.
	svc := NewUserCommandService(failingStore{err: errors.New("unreachable")}, nil, time.Second, zap.NewNop())

	_, err := svc.DeleteUser(context.Background(), cqrs.DeleteUserCommand{UserID: "not-an-id"})
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestDeleteUser_StoreFailure(t *testing.T) {
	svc := NewUserCommandService(failingStore{err: errors.New("boom")}, nil, time.Second, zap.NewNop())

	_, err := svc.DeleteUser(context.Background(), cqrs.DeleteUserCommand{UserID: "usr-0190f6a4-1c1e-7b2a-9a1e-3f1d2c3b4a59"})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}
