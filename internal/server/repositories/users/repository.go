package users

import (
	"context"

	"github.com/dmitrijs2005/expensekeeper/internal/server/models"
)

// Repository stores identity records. Create returns common.ErrDuplicateIdentity
// when the email hash is already registered; lookups return
// common.ErrorNotFound when nothing matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmailHash(ctx context.Context, emailHash string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
