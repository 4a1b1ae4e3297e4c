package httpapi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/services"
)

// fakeUsers keeps accounts in memory. Tokens are "tok-<username>".
type fakeUsers struct {
	mu        sync.Mutex
	passwords map[string]string
	profiles  map[string]models.User
	existsErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{passwords: map[string]string{}, profiles: map[string]models.User{}}
}

func (f *fakeUsers) Register(ctx context.Context, in services.RegisterInput) (*models.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.passwords[in.Username]; ok {
		return nil, "", common.NewError(common.ErrConflict, "Username taken. Please pick another!")
	}
	now := time.Now().UTC()
	u := models.User{
		Username: in.Username, Password: "hashed:" + in.Password,
		FirstName: in.FirstName, LastName: in.LastName, Phone: in.Phone,
		JoinAt: now, LastLoginAt: now,
	}
	f.passwords[in.Username] = in.Password
	f.profiles[in.Username] = u
	return &u, "tok-" + in.Username, nil
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.passwords[username]; !ok || p != password {
		return "", common.NewError(common.ErrInvalidCredentials, "Invalid username/password")
	}
	return "tok-" + username, nil
}

func (f *fakeUsers) Get(ctx context.Context, username string) (*models.UserDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.profiles[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &models.UserDetail{PublicUser: u.Public(), JoinAt: u.JoinAt, LastLoginAt: u.LastLoginAt}, nil
}

func (f *fakeUsers) List(ctx context.Context) ([]models.PublicUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.PublicUser{}
	for _, u := range f.profiles {
		out = append(out, u.Public())
	}
	return out, nil
}

func (f *fakeUsers) MessagesFrom(ctx context.Context, username string) ([]models.SentMessage, error) {
	return []models.SentMessage{{ID: 1, Body: "out", ToUser: models.PublicUser{Username: "x"}}}, nil
}

func (f *fakeUsers) MessagesTo(ctx context.Context, username string) ([]models.ReceivedMessage, error) {
	return []models.ReceivedMessage{{ID: 2, Body: "in", FromUser: models.PublicUser{Username: "y"}}}, nil
}

func (f *fakeUsers) Exists(ctx context.Context, username string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.passwords[username]
	return ok, nil
}

func (f *fakeUsers) ParseToken(token string) (string, error) {
	u, ok := strings.CutPrefix(token, "tok-")
	if !ok || u == "" {
		return "", common.ErrInvalidToken
	}
	return u, nil
}

// fakeMessages stores messages in memory and applies the real guards.
type fakeMessages struct {
	mu    sync.Mutex
	users *fakeUsers
	rows  []models.MessageDetail
	err   error
}

func (f *fakeMessages) Send(ctx context.Context, from, to, body string) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if ok, _ := f.users.Exists(ctx, to); !ok {
		return nil, common.NewError(common.ErrReference, "Recipient does not exist")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := models.MessageDetail{
		ID: int64(len(f.rows) + 1), Body: body, SentAt: time.Now().UTC(),
		FromUser: models.PublicUser{Username: from}, ToUser: models.PublicUser{Username: to},
	}
	f.rows = append(f.rows, d)
	return &models.Message{ID: d.ID, FromUsername: from, ToUsername: to, Body: body, SentAt: d.SentAt}, nil
}

func (f *fakeMessages) find(id int64) (*models.MessageDetail, error) {
	if id < 1 || int(id) > len(f.rows) {
		return nil, common.Errorf(common.ErrNotFound, "No such message: %d", id)
	}
	return &f.rows[id-1], nil
}

func (f *fakeMessages) Get(ctx context.Context, viewer string, id int64) (*models.MessageDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.find(id)
	if err != nil {
		return nil, err
	}
	if err := services.EnsureParticipant(viewer, m); err != nil {
		return nil, err
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMessages) MarkRead(ctx context.Context, viewer string, id int64) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.find(id)
	if err != nil {
		return nil, err
	}
	if err := services.EnsureRecipient(viewer, m); err != nil {
		return nil, err
	}
	if m.ReadAt == nil {
		now := time.Now().UTC()
		m.ReadAt = &now
	}
	return &models.Message{ID: m.ID, FromUsername: m.FromUser.Username, ToUsername: m.ToUser.Username, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

var errBoom = errors.New("boom: pq detail that must not leak")
