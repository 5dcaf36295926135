package cqrs

import "github.com/eaglebank/user-directory/shared/models"

type CreateUserCommand struct {
	FirstName     string
	LastName      string
	ContactNumber models.ContactNumber
}

type DeleteUserCommand struct {
	UserID string
}
