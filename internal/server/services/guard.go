package services

import (
	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/server/models"
)

const forbiddenMessage = "Unauthorized"

func forbidden() error {
	return common.NewError(common.ErrForbidden, forbiddenMessage)
}

// EnsureOwner allows identity to act only on its own username.
func EnsureOwner(identity, username string) error {
	if identity == "" || identity != username {
		return forbidden()
	}
	return nil
}

// EnsureParticipant allows the sender and the recipient of m.
func EnsureParticipant(viewer string, m *models.MessageDetail) error {
	if viewer != "" && (viewer == m.FromUser.Username || viewer == m.ToUser.Username) {
		return nil
	}
	return forbidden()
}

// EnsureRecipient allows only the recipient of m.
func EnsureRecipient(viewer string, m *models.MessageDetail) error {
	if viewer != "" && viewer == m.ToUser.Username {
		return nil
	}
	return forbidden()
}
