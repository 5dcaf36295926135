package repository

import (
	"context"

	"github.com/eaglebank/user-directory/internal/service"
	"github.com/eaglebank/user-directory/shared/models"
)

// UserStore is the document-style accessor the directory is built on.
// FindOne and FindByIDAndDelete return (nil, nil) when nothing matches.
// Insert assigns ID and CreatedAt and must reject a record whose name pair or
// contact number is already taken with an error wrapping models.ErrDuplicateUser.
type UserStore interface {
	FindOne(ctx context.Context, filter UserFilter) (*models.User, error)
	Find(ctx context.Context, filter UserFilter) ([]*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	FindByIDAndDelete(ctx context.Context, id string) (*models.User, error)
}

// UserFilter selects users. Zero-valued fields are ignored, so the zero
// filter matches everything.
type UserFilter struct {
	FirstName     string
	LastName      string
	ContactNumber *models.ContactNumber

	// NameContains matches either name as a case-insensitive substring.
	NameContains string
}

func ByName(firstName, lastName string) UserFilter {
	return UserFilter{FirstName: firstName, LastName: lastName}
}

func ByContactNumber(n models.ContactNumber) UserFilter {
	return UserFilter{ContactNumber: &n}
}

func NameContains(q string) UserFilter {
	return UserFilter{NameContains: q}
}

// Match evaluates the filter in memory.
func (f UserFilter) Match(u *models.User) bool {
	if f.FirstName != "" && u.FirstName != f.FirstName {
		return false
	}
	if f.LastName != "" && u.LastName != f.LastName {
		return false
	}
	if f.ContactNumber != nil && u.ContactNumber != *f.ContactNumber {
		return false
	}
	return service.MatchesName(u, f.NameContains)
}
