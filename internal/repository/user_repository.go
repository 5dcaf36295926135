package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eaglebank/user-directory/shared/models"
	"github.com/eaglebank/user-directory/shared/utils"
	"github.com/lib/pq"
)

const usersSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id             TEXT PRIMARY KEY,
		first_name     TEXT NOT NULL,
		last_name      TEXT NOT NULL,
		contact_number BIGINT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS users_name_key ON users (first_name, last_name);
	CREATE UNIQUE INDEX IF NOT EXISTS users_contact_number_key ON users (contact_number);
`

const userColumns = `id, first_name, last_name, contact_number, created_at`

// UserRepository is the PostgreSQL UserStore. The unique indexes on
// (first_name, last_name) and contact_number back the duplicate checks.
type UserRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ UserStore = (*UserRepository)(nil)

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// EnsureSchema creates the users table and its unique indexes if missing.
func (r *UserRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, usersSchema); err != nil {
		return fmt.Errorf("failed to create users schema: %w", err)
	}
	return nil
}

func (r *UserRepository) Insert(ctx context.Context, user *models.User) error {
	id := utils.GenerateID(utils.UserIDPrefix)
	createdAt := r.now().UTC().Truncate(time.Microsecond)

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		id, user.FirstName, user.LastName, int64(user.ContactNumber), createdAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: violates %s", models.ErrDuplicateUser, pqErr.Constraint)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

func (r *UserRepository) FindOne(ctx context.Context, filter UserFilter) (*models.User, error) {
	if filter.NameContains != "" {
		users, err := r.Find(ctx, filter)
		if err != nil || len(users) == 0 {
			return nil, err
		}
		return users[0], nil
	}

	where, args := filter.where()
	query := `SELECT ` + userColumns + ` FROM users` + where + ` LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Find(ctx context.Context, filter UserFilter) ([]*models.User, error) {
	where, args := filter.where()
	query := `SELECT ` + userColumns + ` FROM users` + where

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if filter.NameContains != "" && !filter.Match(user) {
			continue
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) FindByIDAndDelete(ctx context.Context, id string) (*models.User, error) {
	query := `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var contactNumber int64
	if err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &contactNumber, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.ContactNumber = models.ContactNumber(contactNumber)
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}

// where renders the exact-match fields as a parameterised WHERE clause.
// NameContains is left to Match so both stores fold case the same way;
// lower() depends on the database collation.
func (f UserFilter) where() (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	if f.FirstName != "" {
		conds = append(conds, fmt.Sprintf("first_name = $%d", arg(f.FirstName)))
	}
	if f.LastName != "" {
		conds = append(conds, fmt.Sprintf("last_name = $%d", arg(f.LastName)))
	}
	if f.ContactNumber != nil {
		conds = append(conds, fmt.Sprintf("contact_number = $%d", arg(int64(*f.ContactNumber))))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
