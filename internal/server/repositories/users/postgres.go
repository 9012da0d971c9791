package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/dmitrijs2005/expensekeeper/internal/dbx"
	"github.com/dmitrijs2005/expensekeeper/internal/server/models"
)

// EmailHashConstraint is the unique constraint backing duplicate detection.
const EmailHashConstraint = "users_email_hash_key"

const selectUser = `SELECT id, email_hash, email_enc, email_iv, email_tag, password_hash,
		 first_name, last_name, created_at, updated_at FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email_hash, email_enc, email_iv, email_tag, password_hash, first_name, last_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.EmailHash, user.EmailCiphertext, user.EmailNonce, user.EmailAuthTag, user.PasswordDigest,
		nullString(user.FirstName), nullString(user.LastName),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err, EmailHashConstraint) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmailHash(ctx context.Context, emailHash string) (*models.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUser+`
		 WHERE email_hash = $1
		 LIMIT 1`, emailHash))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUser+`
		 WHERE id = $1`, id))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var firstName, lastName sql.NullString

	err := row.Scan(&user.ID, &user.EmailHash, &user.EmailCiphertext, &user.EmailNonce, &user.EmailAuthTag,
		&user.PasswordDigest, &firstName, &lastName, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.FirstName = firstName.String
	user.LastName = lastName.String
	return user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
