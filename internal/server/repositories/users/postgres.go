package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user (Password must already be hashed) with join and
// last-login times set to now. A taken username yields common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, password, first_name, last_name, phone, join_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING username, password, first_name, last_name, phone, join_at, last_login_at
		 `

	created := &models.User{}
	err := r.db.GetContext(ctx, created, query,
		user.Username, user.Password, user.FirstName, user.LastName, user.Phone, time.Now())

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

// GetByUsername returns the full row, hash included. Only authentication
// should call it.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT username, password, first_name, last_name, phone, join_at, last_login_at
		 FROM users
		 WHERE username = $1
		 `

	user := &models.User{}
	err := r.db.GetContext(ctx, user, query, username)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) TouchLogin(ctx context.Context, username string) error {
	query :=
		`UPDATE users SET last_login_at = $1
		 WHERE username = $2
		 `

	res, err := r.db.ExecContext(ctx, query, time.Now(), username)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, username string) (*models.UserDetail, error) {
	query :=
		`SELECT username, first_name, last_name, phone, join_at, last_login_at
		 FROM users
		 WHERE username = $1
		 `

	user := &models.UserDetail{}
	err := r.db.GetContext(ctx, user, query, username)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// List returns every user ordered by first and last name.
func (r *PostgresRepository) List(ctx context.Context) ([]models.PublicUser, error) {
	query :=
		`SELECT username, first_name, last_name, phone
		 FROM users
		 ORDER BY first_name, last_name
		 `

	users := []models.PublicUser{}
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return users, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}
