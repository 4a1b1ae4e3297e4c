package messages

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

// Create stores a new unread message. Unknown usernames are reported as
// common.ErrReference by the foreign keys.
func (r *PostgresRepository) Create(ctx context.Context, from, to, body string) (*models.Message, error) {
	if from == "" || to == "" {
		return nil, common.ErrValidation
	}

	query :=
		`INSERT INTO messages (from_username, to_username, body, sent_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, from_username, to_username, body, sent_at, read_at
		 `

	msg := &models.Message{}
	err := r.db.GetContext(ctx, msg, query, from, to, body, time.Now())

	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrReference
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

// Get returns the message with the public profiles of both ends.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.MessageDetail, error) {
	query :=
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        f.username AS "from_user.username", f.first_name AS "from_user.first_name",
		        f.last_name AS "from_user.last_name", f.phone AS "from_user.phone",
		        t.username AS "to_user.username", t.first_name AS "to_user.first_name",
		        t.last_name AS "to_user.last_name", t.phone AS "to_user.phone"
		 FROM messages AS m
		 JOIN users AS f ON f.username = m.from_username
		 JOIN users AS t ON t.username = m.to_username
		 WHERE m.id = $1
		 `

	msg := &models.MessageDetail{}
	err := r.db.GetContext(ctx, msg, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

// MarkRead stamps read_at unless it is already set, so repeated calls keep
// the first timestamp.
func (r *PostgresRepository) MarkRead(ctx context.Context, id int64) (*models.Message, error) {
	query :=
		`UPDATE messages SET read_at = COALESCE(read_at, $2)
		 WHERE id = $1
		 RETURNING id, from_username, to_username, body, sent_at, read_at
		 `

	msg := &models.Message{}
	err := r.db.GetContext(ctx, msg, query, id, time.Now())

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

// From lists messages sent by username, each with the recipient profile.
func (r *PostgresRepository) From(ctx context.Context, username string) ([]models.SentMessage, error) {
	query :=
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username AS "to_user.username", u.first_name AS "to_user.first_name",
		        u.last_name AS "to_user.last_name", u.phone AS "to_user.phone"
		 FROM messages AS m
		 JOIN users AS u ON u.username = m.to_username
		 WHERE m.from_username = $1
		 ORDER BY m.id
		 `

	msgs := []models.SentMessage{}
	if err := r.db.SelectContext(ctx, &msgs, query, username); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msgs, nil
}

// To lists messages received by username, each with the sender profile.
func (r *PostgresRepository) To(ctx context.Context, username string) ([]models.ReceivedMessage, error) {
	query :=
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username AS "from_user.username", u.first_name AS "from_user.first_name",
		        u.last_name AS "from_user.last_name", u.phone AS "from_user.phone"
		 FROM messages AS m
		 JOIN users AS u ON u.username = m.from_username
		 WHERE m.to_username = $1
		 ORDER BY m.id
		 `

	msgs := []models.ReceivedMessage{}
	if err := r.db.SelectContext(ctx, &msgs, query, username); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msgs, nil
}
