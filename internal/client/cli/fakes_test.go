package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/messagely/internal/client/config"
	"github.com/dmitrijs2005/messagely/internal/client/models"
)

type fakeClient struct {
	token string

	registered models.RegisterRequest
	regErr     error

	loginUser, loginPass string
	loginErr             error

	users   []models.PublicUser
	user    *models.UserDetail
	inbox   []models.ReceivedMessage
	outbox  []models.SentMessage
	message *models.MessageDetail
	callErr error

	sentTo, sentBody string
	readID           int64
	shownID          int64
}

func (f *fakeClient) Register(_ context.Context, req models.RegisterRequest) (*models.PublicUser, error) {
	f.registered = req
	if f.regErr != nil {
		return nil, f.regErr
	}
	f.token = "tok"
	return &models.PublicUser{Username: req.Username, FirstName: req.FirstName, LastName: req.LastName, Phone: req.Phone}, nil
}

func (f *fakeClient) Login(_ context.Context, username, password string) error {
	f.loginUser, f.loginPass = username, password
	if f.loginErr != nil {
		return f.loginErr
	}
	f.token = "tok"
	return nil
}

func (f *fakeClient) Logout()       { f.token = "" }
func (f *fakeClient) Token() string { return f.token }

func (f *fakeClient) Users(context.Context) ([]models.PublicUser, error) {
	return f.users, f.callErr
}

func (f *fakeClient) User(_ context.Context, username string) (*models.UserDetail, error) {
	return f.user, f.callErr
}

func (f *fakeClient) Inbox(context.Context, string) ([]models.ReceivedMessage, error) {
	return f.inbox, f.callErr
}

func (f *fakeClient) Outbox(context.Context, string) ([]models.SentMessage, error) {
	return f.outbox, f.callErr
}

func (f *fakeClient) Message(_ context.Context, id int64) (*models.MessageDetail, error) {
	f.shownID = id
	return f.message, f.callErr
}

func (f *fakeClient) Send(_ context.Context, to, body string) (*models.Message, error) {
	f.sentTo, f.sentBody = to, body
	if f.callErr != nil {
		return nil, f.callErr
	}
	return &models.Message{ID: 7, FromUsername: "alice", ToUsername: to, Body: body, SentAt: time.Now()}, nil
}

func (f *fakeClient) MarkRead(_ context.Context, id int64) (*models.Message, error) {
	f.readID = id
	if f.callErr != nil {
		return nil, f.callErr
	}
	now := time.Now()
	return &models.Message{ID: id, ReadAt: &now}, nil
}

// newTestApp returns an App whose reader is fed from input and whose
// output is collected in the returned buffer.
func newTestApp(fc *fakeClient, input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &App{
		config: &config.Config{ServerURL: "http://test"},
		client: fc,
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    out,
	}, out
}

func loggedIn(fc *fakeClient, input string) (*App, *bytes.Buffer) {
	fc.token = "tok"
	a, out := newTestApp(fc, input)
	a.userName = "alice"
	return a, out
}
