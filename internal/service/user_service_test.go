package service

import (
	"testing"

	"github.com/eaglebank/user-directory/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameContains(t *testing.T) {
	tests := []struct {
		name, query string
		want        bool
	}{
		{"Jane", "", true},
		{"Jane", "an", true},
		{"Jane", "JA", true},
		{"Jane", "ne", true},
		{"Jane", "jo", false},
		{"Ångström", "ÅNG", true},
		{"a.b", ".", true},
		{"ab", ".", false},
		{"100%", "%", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NameContains(tt.name, tt.query), "%q contains %q", tt.name, tt.query)
	}
}

func TestMatchesName(t *testing.T) {
	u := &models.User{FirstName: "Jane", LastName: "Doe"}

	assert.True(t, MatchesName(u, "jan"))
	assert.True(t, MatchesName(u, "OE"))
	assert.False(t, MatchesName(u, "smith"))
}

func TestNameSorter_SortByFirstName(t *testing.T) {
	sorter, err := NewNameSorter("en")
	require.NoError(t, err)

	users := []*models.User{
		{ID: "1", FirstName: "bob", LastName: "zed"},
		{ID: "2", FirstName: "Alice", LastName: "yy"},
		{ID: "3", FirstName: "Émile", LastName: "x"},
		{ID: "4", FirstName: "Zoe", LastName: "w"},
		{ID: "5", FirstName: "bob", LastName: "v"},
	}
	sorter.SortByFirstName(users)

	var ids []string
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{"2", "1", "5", "3", "4"}, ids)
}

func TestNewNameSorter_InvalidLocale(t *testing.T) {
	_, err := NewNameSorter("not a locale!")
	assert.Error(t, err)
}
