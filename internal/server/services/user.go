// Package services contains server-side business logic. This file implements
// UserService, which handles signup, login, session authentication and
// support-side email recovery.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/dmitrijs2005/expensekeeper/internal/cryptox"
	"github.com/dmitrijs2005/expensekeeper/internal/dbx"
	"github.com/dmitrijs2005/expensekeeper/internal/logging"
	"github.com/dmitrijs2005/expensekeeper/internal/server/auth"
	"github.com/dmitrijs2005/expensekeeper/internal/server/models"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/users"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SignupRequest carries raw caller input. Names are optional.
type SignupRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type SignupResult struct {
	User  *models.User
	Token string
}

type LoginResult struct {
	Token  string
	UserID string
}

// UserService provides identity operations:
// - Signup: create an identity with an encrypted email and start a session
// - Login: verify credentials and start a session
// - Authenticate: validate a session token
// - RecoverEmail: decrypt a stored email for support use
type UserService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	codec          *cryptox.EmailCodec
	tokens         *auth.TokenService
	allowedDomains []string
	logger         logging.Logger
}

// NewUserService constructs a UserService. An empty allowedDomains list
// accepts any email domain.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, codec *cryptox.EmailCodec,
	tokens *auth.TokenService, allowedDomains []string, logger logging.Logger) *UserService {

	domains := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			domains = append(domains, d)
		}
	}

	return &UserService{
		db:             db,
		repomanager:    m,
		codec:          codec,
		tokens:         tokens,
		allowedDomains: domains,
		logger:         logger.With("module", "userservice"),
	}
}

// Signup registers a new identity. Email is normalised, checked for shape and
// domain, hashed for lookup and encrypted at rest; the password is stored as
// a bcrypt digest. A second signup for the same normalised email fails with
// ErrDuplicateIdentity.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	email, err := s.checkEmail(req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	emailHash := cryptox.HashEmail(email)

	enc, err := s.codec.Encrypt(email)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypt email: %v", common.ErrorInternal, err)
	}

	digest, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	user := &models.User{
		EmailHash:      emailHash,
		PasswordDigest: digest,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
	}
	user.SetEncryptedEmail(enc)

	var created *models.User
	err = s.withUsers(ctx, func(ctx context.Context, repo users.Repository) error {
		_, err := repo.GetByEmailHash(ctx, emailHash)
		switch {
		case err == nil:
			return common.ErrDuplicateIdentity
		case !errors.Is(err, common.ErrorNotFound):
			return fmt.Errorf("%w: lookup: %v", common.ErrorInternal, err)
		}

		created, err = repo.Create(ctx, user)
		if err != nil && !errors.Is(err, common.ErrDuplicateIdentity) {
			return fmt.Errorf("%w: create user: %v", common.ErrorInternal, err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(created.ID, emailHash, auth.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user signed up", "user_id", created.ID, "email_hash", emailHash)

	return &SignupResult{User: created, Token: token}, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password both yield ErrInvalidCredentials and cost one bcrypt
// comparison each.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	normalized, err := s.checkEmail(email, password)
	if err != nil {
		return nil, err
	}

	emailHash := cryptox.HashEmail(normalized)
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmailHash(ctx, emailHash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.DummyVerify(password)
			s.logger.Info(ctx, "login rejected", "email_hash", emailHash)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: lookup: %v", common.ErrorInternal, err)
	}

	if !auth.VerifyPassword(password, user.PasswordDigest) {
		s.logger.Info(ctx, "login rejected", "email_hash", emailHash)
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.EmailHash, auth.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)

	return &LoginResult{Token: token, UserID: user.ID}, nil
}

// Authenticate validates a session token and returns its claims.
func (s *UserService) Authenticate(token string) (*auth.Claims, error) {
	return s.tokens.Verify(token)
}

// RecoverEmail decrypts the stored email of a user. Tampered or undecryptable
// records fail with ErrIntegrity; nothing partial is returned.
func (s *UserService) RecoverEmail(ctx context.Context, userID string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("%w: lookup: %v", common.ErrorInternal, err)
	}

	email, err := s.codec.Decrypt(user.EncryptedEmail())
	if err != nil {
		s.logger.Error(ctx, "stored email failed integrity check", "user_id", userID)
		return "", err
	}
	return email, nil
}

// withUsers runs fn against the users repository, inside a transaction when
// a database is configured.
func (s *UserService) withUsers(ctx context.Context, fn func(context.Context, users.Repository) error) error {
	if s.db == nil {
		return fn(ctx, s.repomanager.Users(nil))
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, s.repomanager.Users(tx))
	})
}

// checkEmail normalises the email and applies the shape and domain rules
// shared by signup and login.
func (s *UserService) checkEmail(email, password string) (string, error) {
	normalized := cryptox.NormalizeEmail(email)
	if normalized == "" || password == "" {
		return "", common.ErrMissingCredentials
	}
	if !emailPattern.MatchString(normalized) {
		return "", common.ErrInvalidEmailFormat
	}
	if len(s.allowedDomains) > 0 {
		domain := normalized[strings.LastIndex(normalized, "@")+1:]
		allowed := false
		for _, d := range s.allowedDomains {
			if domain == d {
				allowed = true
				break
			}
		}
		if !allowed {
			return "", common.ErrEmailDomainNotAllowed
		}
	}
	return normalized, nil
}
