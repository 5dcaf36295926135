package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eaglebank/user-directory/internal/repository"
	"github.com/eaglebank/user-directory/shared/cqrs"
	"github.com/eaglebank/user-directory/shared/events"
	"github.com/eaglebank/user-directory/shared/models"
	"github.com/eaglebank/user-directory/shared/utils"
	"go.uber.org/zap"
)

// EventPublisher appends domain events to the user event stream.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) (string, error)
}

// UserCommandService owns the directory's write path: duplicate-checked
// creation and deletion by ID.
type UserCommandService struct {
	store     repository.UserStore
	publisher EventPublisher
	timeout   time.Duration
	logger    *zap.Logger
}

// NewUserCommandService builds the service. publisher may be nil, in which
// case no events are emitted. A zero timeout leaves store calls bounded only
// by the caller's context.
func NewUserCommandService(
	store repository.UserStore,
	publisher EventPublisher,
	timeout time.Duration,
	logger *zap.Logger,
) *UserCommandService {
	return &UserCommandService{
		store:     store,
		publisher: publisher,
		timeout:   timeout,
		logger:    logger,
	}
}

// CreateUser rejects the command when a user already holds the same name
// pair or the same contact number. The store enforces both constraints again
// on insert, so a concurrent create that passes the lookups still fails with
// models.ErrDuplicateUser.
func (s *UserCommandService) CreateUser(ctx context.Context, cmd cqrs.CreateUserCommand) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	existing, err := s.store.FindOne(ctx, repository.ByName(cmd.FirstName, cmd.LastName))
	if err != nil {
		return nil, storeError("check name", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: name %s %s is taken", models.ErrDuplicateUser, cmd.FirstName, cmd.LastName)
	}

	existing, err = s.store.FindOne(ctx, repository.ByContactNumber(cmd.ContactNumber))
	if err != nil {
		return nil, storeError("check contact number", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: contact number %d is taken", models.ErrDuplicateUser, cmd.ContactNumber)
	}

	user := &models.User{
		FirstName:     cmd.FirstName,
		LastName:      cmd.LastName,
		ContactNumber: cmd.ContactNumber,
	}
	if err := s.store.Insert(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateUser) {
			return nil, err
		}
		return nil, storeError("create user", err)
	}

	s.publish(ctx, events.UserCreated, events.UserCreatedEvent{
		UserID:        user.ID,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		ContactNumber: int64(user.ContactNumber),
	})
	return user, nil
}

// DeleteUser removes the user and returns its last state. Deleting an ID
// that does not exist, or no longer exists, fails with models.ErrUserNotFound.
func (s *UserCommandService) DeleteUser(ctx context.Context, cmd cqrs.DeleteUserCommand) (*models.User, error) {
	if !utils.ValidateUserID(cmd.UserID) {
		return nil, models.ErrUserNotFound
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.store.FindByIDAndDelete(ctx, cmd.UserID)
	if err != nil {
		return nil, storeError("delete user", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	s.publish(ctx, events.UserDeleted, events.UserDeletedEvent{UserID: user.ID})
	return user, nil
}

// publish is best effort: the write has already been committed.
func (s *UserCommandService) publish(ctx context.Context, eventType string, data any) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}

func (s *UserCommandService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrStoreUnavailable, op, err)
}
