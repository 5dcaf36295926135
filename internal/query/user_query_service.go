package query

import (
	"context"
	"fmt"
	"time"

	"github.com/eaglebank/user-directory/internal/repository"
	"github.com/eaglebank/user-directory/internal/service"
	"github.com/eaglebank/user-directory/shared/cqrs"
	"github.com/eaglebank/user-directory/shared/models"
)

// UserQueryService answers directory reads straight from the store.
type UserQueryService struct {
	store   repository.UserStore
	sorter  *service.NameSorter
	timeout time.Duration
}

func NewUserQueryService(store repository.UserStore, sorter *service.NameSorter, timeout time.Duration) *UserQueryService {
	return &UserQueryService{store: store, sorter: sorter, timeout: timeout}
}

func (s *UserQueryService) ListUsers(ctx context.Context, _ cqrs.ListUsersQuery) ([]*models.User, error) {
	return s.find(ctx, repository.UserFilter{})
}

func (s *UserQueryService) SearchUsers(ctx context.Context, q cqrs.SearchUsersQuery) ([]*models.User, error) {
	return s.find(ctx, repository.NameContains(q.Query))
}

// SortUsers orders by first name with the configured locale's collation.
func (s *UserQueryService) SortUsers(ctx context.Context, _ cqrs.SortUsersQuery) ([]*models.User, error) {
	users, err := s.find(ctx, repository.UserFilter{})
	if err != nil {
		return nil, err
	}
	s.sorter.SortByFirstName(users)
	return users, nil
}

func (s *UserQueryService) find(ctx context.Context, filter repository.UserFilter) ([]*models.User, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	users, err := s.store.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}
