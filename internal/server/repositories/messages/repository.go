package messages

import (
	"context"

	"github.com/dmitrijs2005/messagely/internal/server/models"
)

// Repository is the message store. Listing results are ordered by id.
type Repository interface {
	Create(ctx context.Context, from, to, body string) (*models.Message, error)
	Get(ctx context.Context, id int64) (*models.MessageDetail, error)
	MarkRead(ctx context.Context, id int64) (*models.Message, error)
	From(ctx context.Context, username string) ([]models.SentMessage, error)
	To(ctx context.Context, username string) ([]models.ReceivedMessage, error)
}
