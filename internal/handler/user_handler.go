package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/eaglebank/user-directory/shared/cqrs"
	"github.com/eaglebank/user-directory/shared/middleware"
	"github.com/eaglebank/user-directory/shared/models"
	"github.com/gin-gonic/gin"
)

// UserCommander defines the write-side operations used by UserHandler.
type UserCommander interface {
	CreateUser(context.Context, cqrs.CreateUserCommand) (*models.User, error)
	DeleteUser(context.Context, cqrs.DeleteUserCommand) (*models.User, error)
}

// UserQuerier defines the read-side operations used by UserHandler.
type UserQuerier interface {
	ListUsers(context.Context, cqrs.ListUsersQuery) ([]*models.User, error)
	SearchUsers(context.Context, cqrs.SearchUsersQuery) ([]*models.User, error)
	SortUsers(context.Context, cqrs.SortUsersQuery) ([]*models.User, error)
}

// UserHandler routes requests to the command or query service as appropriate.
type UserHandler struct {
	commands UserCommander
	queries  UserQuerier
}

// CreateUserRequest binds from JSON or from a urlencoded form. ContactNumber
// is a pointer so that required checks presence and 0 stays a valid number.
type CreateUserRequest struct {
	FirstName     string                `json:"firstName" form:"firstName" validate:"required"`
	LastName      string                `json:"lastName" form:"lastName" validate:"required"`
	ContactNumber *models.ContactNumber `json:"contactNumber" form:"contactNumber" validate:"required"`
}

func NewUserHandler(commands UserCommander, queries UserQuerier) *UserHandler {
	return &UserHandler{commands: commands, queries: queries}
}

// Register mounts the directory routes on rg.
func (h *UserHandler) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.POST("", h.CreateUser)
	users.GET("", h.ListUsers)
	users.GET("/search", h.SearchUsers)
	users.GET("/sort", h.SortUsers)
	users.DELETE("/:id", h.DeleteUser)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.commands.CreateUser(c.Request.Context(), cqrs.CreateUserCommand{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		ContactNumber: *req.ContactNumber,
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicateUser) {
			middleware.RespondWithError(c, http.StatusConflict, "User already exists")
			return
		}
		h.serverError(c, "create user", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.queries.ListUsers(c.Request.Context(), cqrs.ListUsersQuery{})
	if err != nil {
		h.serverError(c, "list users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	users, err := h.queries.SearchUsers(c.Request.Context(), cqrs.SearchUsersQuery{
		Query: c.Query("q"),
	})
	if err != nil {
		h.serverError(c, "search users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) SortUsers(c *gin.Context) {
	users, err := h.queries.SortUsers(c.Request.Context(), cqrs.SortUsersQuery{})
	if err != nil {
		h.serverError(c, "sort users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	user, err := h.commands.DeleteUser(c.Request.Context(), cqrs.DeleteUserCommand{
		UserID: c.Param("id"),
	})
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "User not found")
			return
		}
		h.serverError(c, "delete user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// serverError attaches err to the request for LoggingMiddleware and hides it
// from the client.
func (h *UserHandler) serverError(c *gin.Context, op string, err error) {
	_ = c.Error(fmt.Errorf("%s: %w", op, err))
	middleware.RespondWithError(c, http.StatusInternalServerError, "Server Error")
}
