// Package service holds the name handling shared by the command and query
// sides: case-insensitive matching for search and locale-aware ordering.
package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/eaglebank/user-directory/shared/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NameContains reports whether name contains query, ignoring case.
// Every name contains the empty query.
func NameContains(name, query string) bool {
	if query == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(name), fold.String(query))
}

// MatchesName reports whether either of u's names contains query.
func MatchesName(u *models.User, query string) bool {
	return NameContains(u.FirstName, query) || NameContains(u.LastName, query)
}

// NameSorter orders users by first name under a locale's collation rules.
type NameSorter struct {
	tag language.Tag
}

func NewNameSorter(locale string) (*NameSorter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid sort locale %q: %w", locale, err)
	}
	return &NameSorter{tag: tag}, nil
}

// SortByFirstName sorts users in place. Users with equal first names keep
// their relative order.
func (s *NameSorter) SortByFirstName(users []*models.User) {
	// collate.Collator keeps internal buffers, so one per call.
	c := collate.New(s.tag)
	slices.SortStableFunc(users, func(a, b *models.User) int {
		return c.CompareString(a.FirstName, b.FirstName)
	})
}
