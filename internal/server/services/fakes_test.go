package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/notify"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/messages"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/users"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

// memUsers is an in-memory users.Repository.
type memUsers struct {
	mu      sync.Mutex
	rows    map[string]models.User
	touched map[string]int
	err     error
}

func newMemUsers() *memUsers {
	return &memUsers{rows: map[string]models.User{}, touched: map[string]int{}}
}

func (r *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.rows[u.Username]; ok {
		return nil, common.ErrConflict
	}
	now := time.Now().UTC()
	stored := *u
	stored.JoinAt, stored.LastLoginAt = now, now
	r.rows[u.Username] = stored
	return &stored, nil
}

func (r *memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) TouchLogin(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[username]
	if !ok {
		return common.ErrNotFound
	}
	u.LastLoginAt = time.Now().UTC()
	r.rows[username] = u
	r.touched[username]++
	return nil
}

func (r *memUsers) Get(ctx context.Context, username string) (*models.UserDetail, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &models.UserDetail{PublicUser: u.Public(), JoinAt: u.JoinAt, LastLoginAt: u.LastLoginAt}, nil
}

func (r *memUsers) List(ctx context.Context) ([]models.PublicUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.PublicUser, 0, len(r.rows))
	for _, u := range r.rows {
		out = append(out, u.Public())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].LastName < out[j].LastName
	})
	return out, nil
}

func (r *memUsers) Exists(ctx context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[username]
	return ok, nil
}

// memMessages is an in-memory messages.Repository backed by memUsers.
type memMessages struct {
	mu     sync.Mutex
	users  *memUsers
	rows   []models.Message
	nextID int64
}

func (r *memMessages) Create(ctx context.Context, from, to, body string) (*models.Message, error) {
	if from == "" || to == "" {
		return nil, common.ErrValidation
	}
	for _, u := range []string{from, to} {
		if ok, _ := r.users.Exists(ctx, u); !ok {
			return nil, common.ErrReference
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m := models.Message{ID: r.nextID, FromUsername: from, ToUsername: to, Body: body, SentAt: time.Now().UTC()}
	r.rows = append(r.rows, m)
	return &m, nil
}

func (r *memMessages) find(id int64) (int, bool) {
	for i, m := range r.rows {
		if m.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (r *memMessages) profile(username string) models.PublicUser {
	u, _ := r.users.GetByUsername(context.Background(), username)
	return u.Public()
}

func (r *memMessages) Get(ctx context.Context, id int64) (*models.MessageDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return nil, common.ErrNotFound
	}
	m := r.rows[i]
	return &models.MessageDetail{
		ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt,
		FromUser: r.profile(m.FromUsername), ToUser: r.profile(m.ToUsername),
	}, nil
}

func (r *memMessages) MarkRead(ctx context.Context, id int64) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return nil, common.ErrNotFound
	}
	if r.rows[i].ReadAt == nil {
		now := time.Now().UTC()
		r.rows[i].ReadAt = &now
	}
	m := r.rows[i]
	return &m, nil
}

func (r *memMessages) From(ctx context.Context, username string) ([]models.SentMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.SentMessage{}
	for _, m := range r.rows {
		if m.FromUsername == username {
			out = append(out, models.SentMessage{ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt, ToUser: r.profile(m.ToUsername)})
		}
	}
	return out, nil
}

func (r *memMessages) To(ctx context.Context, username string) ([]models.ReceivedMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.ReceivedMessage{}
	for _, m := range r.rows {
		if m.ToUsername == username {
			out = append(out, models.ReceivedMessage{ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt, FromUser: r.profile(m.FromUsername)})
		}
	}
	return out, nil
}

type fakeRepoManager struct {
	u *memUsers
	m *memMessages
}

func newFakeRepoManager() *fakeRepoManager {
	u := newMemUsers()
	return &fakeRepoManager{u: u, m: &memMessages{users: u}}
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return f.u }
func (f *fakeRepoManager) Messages(dbx.DBTX) messages.Repository        { return f.m }

type recordingNotifier struct {
	mu   sync.Mutex
	jobs []notify.Job
	ok   bool
}

func (n *recordingNotifier) Submit(ctx context.Context, job notify.Job) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, job)
	return n.ok
}
