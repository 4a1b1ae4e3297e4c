// Package services contains server-side business logic on top of the
// repositories: registration and login (UserService), message exchange
// (MessageService) and the access checks shared with the HTTP layer.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/server/auth"
	"github.com/dmitrijs2005/messagely/internal/server/config"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/repomanager"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is a new account. Password is plain text.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// UserService handles accounts:
//   - Register: create a user and log them in
//   - Authenticate / Login: check credentials and mint a token
//   - Get / List: profiles
//   - MessagesFrom / MessagesTo: a user's outbox and inbox
type UserService struct {
	db                    *sqlx.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	bcryptCost            int
}

func NewUserService(db *sqlx.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		bcryptCost:            cfg.BcryptCost,
	}
}

// Register stores a new user with a hashed password, stamps the login time
// and returns the stored user with a fresh token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, "", common.NewError(common.ErrValidation, "Password is too long")
	}
	if err != nil {
		return nil, "", fmt.Errorf("error hashing password: %w", err)
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.Create(ctx, &models.User{
			Username:  in.Username,
			Password:  hash,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Phone:     in.Phone,
		})
		if err != nil {
			return err
		}
		if err := repo.TouchLogin(ctx, u.Username); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, "", common.NewError(common.ErrConflict, "Username taken. Please pick another!")
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.issueToken(user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate reports whether password matches the stored hash. Unknown
// users give common.ErrNotFound.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return auth.VerifyPassword(password, user.Password)
}

// Login checks credentials, stamps the login time and returns a token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	ok, err := s.Authenticate(ctx, username, password)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return "", err
	}
	if !ok {
		return "", common.NewError(common.ErrInvalidCredentials, "Invalid username/password")
	}

	if err := s.TouchLogin(ctx, username); err != nil {
		return "", err
	}
	return s.issueToken(username)
}

func (s *UserService) TouchLogin(ctx context.Context, username string) error {
	return s.repomanager.Users(s.db).TouchLogin(ctx, username)
}

// Exists is used by the authentication middleware: a valid token for a
// deleted user is still rejected.
func (s *UserService) Exists(ctx context.Context, username string) (bool, error) {
	return s.repomanager.Users(s.db).Exists(ctx, username)
}

func (s *UserService) Get(ctx context.Context, username string) (*models.UserDetail, error) {
	u, err := s.repomanager.Users(s.db).Get(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf(common.ErrNotFound, "No such user: %s", username)
		}
		return nil, err
	}
	return u, nil
}

// List returns every user's public profile ordered by name.
func (s *UserService) List(ctx context.Context) ([]models.PublicUser, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// MessagesFrom is the outbox of username.
func (s *UserService) MessagesFrom(ctx context.Context, username string) ([]models.SentMessage, error) {
	return s.repomanager.Messages(s.db).From(ctx, username)
}

// MessagesTo is the inbox of username.
func (s *UserService) MessagesTo(ctx context.Context, username string) ([]models.ReceivedMessage, error) {
	return s.repomanager.Messages(s.db).To(ctx, username)
}

func (s *UserService) issueToken(username string) (string, error) {
	token, err := auth.IssueToken(username, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("error issuing token: %w", err)
	}
	return token, nil
}

// ParseToken verifies a token issued by this service and returns its
// username.
func (s *UserService) ParseToken(token string) (string, error) {
	return auth.ParseToken(token, s.jwtSecret)
}
