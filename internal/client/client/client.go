package client

import (
	"context"

	"github.com/dmitrijs2005/messagely/internal/client/models"
)

type Client interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.PublicUser, error)
	Login(ctx context.Context, username, password string) error
	Logout()
	Token() string

	Users(ctx context.Context) ([]models.PublicUser, error)
	User(ctx context.Context, username string) (*models.UserDetail, error)
	Inbox(ctx context.Context, username string) ([]models.ReceivedMessage, error)
	Outbox(ctx context.Context, username string) ([]models.SentMessage, error)

	Message(ctx context.Context, id int64) (*models.MessageDetail, error)
	Send(ctx context.Context, to, body string) (*models.Message, error)
	MarkRead(ctx context.Context, id int64) (*models.Message, error)
}
