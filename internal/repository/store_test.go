package repository

import (
	"testing"

	"github.com/eaglebank/user-directory/shared/models"
	"github.com/stretchr/testify/assert"
)

func TestUserFilter_Match(t *testing.T) {
	jane := &models.User{ID: "usr-1", FirstName: "Jane", LastName: "Doe", ContactNumber: 555}

	tests := []struct {
		name   string
		filter UserFilter
		want   bool
	}{
		{"zero filter", UserFilter{}, true},
		{"exact name", ByName("Jane", "Doe"), true},
		{"name is case sensitive", ByName("jane", "doe"), false},
		{"other last name", ByName("Jane", "Roe"), false},
		{"contact number", ByContactNumber(555), true},
		{"other contact number", ByContactNumber(777), false},
		{"substring of first name", NameContains("AN"), true},
		{"substring of last name", NameContains("oe"), true},
		{"empty substring", NameContains(""), true},
		{"no substring", NameContains("smith"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(jane))
		})
	}
}

func TestUserFilter_MatchFoldsCase(t *testing.T) {
	hans := &models.User{FirstName: "Hans", LastName: "STRASSE", ContactNumber: 1}

	assert.True(t, NameContains("ß").Match(hans))
	assert.True(t, NameContains("strasse").Match(hans))
	assert.False(t, NameContains("straße.").Match(hans))
}

func TestUserFilter_Where(t *testing.T) {
	tests := []struct {
		name      string
		filter    UserFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:   "zero filter",
			filter: UserFilter{},
		},
		{
			name:      "name pair",
			filter:    ByName("Jane", "Doe"),
			wantWhere: " WHERE first_name = $1 AND last_name = $2",
			wantArgs:  []any{"Jane", "Doe"},
		},
		{
			name:      "contact number",
			filter:    ByContactNumber(555),
			wantWhere: " WHERE contact_number = $1",
			wantArgs:  []any{int64(555)},
		},
		{
			name:   "substring is matched outside SQL",
			filter: NameContains("a%"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.where()
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
