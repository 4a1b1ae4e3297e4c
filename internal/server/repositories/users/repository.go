package users

import (
	"context"

	"github.com/dmitrijs2005/messagely/internal/server/models"
)

// Repository is the credential store: read/write access to users rows.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	TouchLogin(ctx context.Context, username string) error
	Get(ctx context.Context, username string) (*models.UserDetail, error)
	List(ctx context.Context) ([]models.PublicUser, error)
	Exists(ctx context.Context, username string) (bool, error)
}
