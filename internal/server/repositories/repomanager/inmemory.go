package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/expensekeeper/internal/dbx"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager hands out a single shared in-memory users
// repository. The db argument is ignored.
type InMemoryRepositoryManager struct {
	users *users.InMemoryRepository
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewInMemoryRepository()}
}

// RunMigrations is a no-op; there is no schema to create.
func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}
