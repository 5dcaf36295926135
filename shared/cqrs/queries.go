package cqrs

// ListUsersQuery fetches every user in store order.
type ListUsersQuery struct{}

// SearchUsersQuery matches Query against first and last names.
// An empty Query matches every user.
type SearchUsersQuery struct {
	Query string
}

// SortUsersQuery fetches every user ordered by first name.
type SortUsersQuery struct{}
