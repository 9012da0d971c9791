package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/dmitrijs2005/expensekeeper/internal/cryptox"
	"github.com/dmitrijs2005/expensekeeper/internal/dbx"
	"github.com/dmitrijs2005/expensekeeper/internal/logging"
	"github.com/dmitrijs2005/expensekeeper/internal/server/auth"
	"github.com/dmitrijs2005/expensekeeper/internal/server/models"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func testKey(b byte) []byte {
	k := make([]byte, cryptox.KeySize)
	for i := range k {
		k[i] = b
	}
	return k
}

func newService(t *testing.T, rm repomanager.RepositoryManager, key []byte, domains ...string) *UserService {
	t.Helper()
	codec, err := cryptox.NewEmailCodec(key)
	require.NoError(t, err)
	tokens := auth.NewTokenService([]byte("test-signing-key"))
	if domains == nil {
		domains = []string{"gmail.com"}
	}
	return NewUserService(nil, rm, codec, tokens, domains, logging.Nop{})
}

type fakeUsersRepo struct {
	getOut    *models.User
	getErr    error
	createErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = "fake-id"
	return u, nil
}

func (f *fakeUsersRepo) GetByEmailHash(ctx context.Context, emailHash string) (*models.User, error) {
	return f.getOut, f.getErr
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return f.getOut, f.getErr
}

type fakeManager struct{ repo users.Repository }

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository            { return m.repo }

// --- tests ---

func TestSignupThenLogin_NormalisesEmail(t *testing.T) {
	s := newService(t, repomanager.NewInMemoryRepositoryManager(), testKey(1))
	ctx := context.Background()

	res, err := s.Signup(ctx, SignupRequest{Email: "  Test@Gmail.com ", Password: "password123", FirstName: " Ada "})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.NotEmpty(t, res.User.ID)
	assert.Equal(t, "Ada", res.User.FirstName)
	assert.Equal(t, cryptox.HashEmail("test@gmail.com"), res.User.EmailHash)
	assert.NotContains(t, res.User.EmailCiphertext, "test@gmail.com")

	login, err := s.Login(ctx, "test@gmail.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.UserID)

	claims, err := s.Authenticate(login.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)
	assert.Equal(t, auth.RoleUser, claims.Role)
	assert.Equal(t, res.User.EmailHash, claims.EmailHash)
}

func TestSignup_Duplicate(t *testing.T) {
	s := newService(t, repomanager.NewInMemoryRepositoryManager(), testKey(1))
	ctx := context.Background()

	_, err := s.Signup(ctx, SignupRequest{Email: "dup@gmail.com", Password: "password123"})
	require.NoError(t, err)

	_, err = s.Signup(ctx, SignupRequest{Email: "DUP@gmail.com", Password: "otherpass1"})
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
}

func TestSignup_ConcurrentDuplicateExactlyOneSucceeds(t *testing.T) {
	s := newService(t, repomanager.NewInMemoryRepositoryManager(), testKey(1))
	ctx := context.Background()

	const n = 4
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Signup(ctx, SignupRequest{Email: "race@gmail.com", Password: "password123"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
	}
	assert.Equal(t, 1, ok)
}

func TestSignup_StorageUniqueViolationMapsToDuplicate(t *testing.T) {
	repo := &fakeUsersRepo{getErr: common.ErrorNotFound, createErr: common.ErrDuplicateIdentity}
	s := newService(t, &fakeManager{repo: repo}, testKey(1))

	_, err := s.Signup(context.Background(), SignupRequest{Email: "a@gmail.com", Password: "password123"})
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
}

func TestSignup_Validation(t *testing.T) {
	s := newService(t, repomanager.NewInMemoryRepositoryManager(), testKey(1))

	tests := []struct {
		name string
		req  SignupRequest
		want error
	}{
		{"missing email", SignupRequest{Password: "password123"}, common.ErrMissingCredentials},
		{"missing password", SignupRequest{Email: "a@gmail.com"}, common.ErrMissingCredentials},
		{"bad format", SignupRequest{Email: "not-an-email", Password: "password123"}, common.ErrInvalidEmailFormat},
		{"space inside", SignupRequest{Email: "a b@gmail.com", Password: "password123"}, common.ErrInvalidEmailFormat},
		{"domain", SignupRequest{Email: "a@yahoo.com", Password: "password123"}, common.ErrEmailDomainNotAllowed},
		{"short password", SignupRequest{Email: "a@gmail.com", Password: "short"}, common.ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Signup(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestSignup_EmptyDomainListAllowsAny(t *testing.T) {
	codec, err := cryptox.NewEmailCodec(testKey(1))
	require.NoError(t, err)
	s := NewUserService(nil, repomanager.NewInMemoryRepositoryManager(), codec,
		auth.NewTokenService([]byte("k")), []string{}, logging.Nop{})

	_, err = s.Signup(context.Background(), SignupRequest{Email: "a@example.org", Password: "password123"})
	assert.NoError(t, err)
}

func TestSignup_LookupFailureIsInternal(t *testing.T) {
	repo := &fakeUsersRepo{getErr: errors.New("db down")}
	s := newService(t, &fakeManager{repo: repo}, testKey(1))

	_, err := s.Signup(context.Background(), SignupRequest{Email: "a@gmail.com", Password: "password123"})
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin_UnknownEmailAndWrongPasswordLookIdentical(t *testing.T) {
	s := newService(t, repomanager.NewInMemoryRepositoryManager(), testKey(1))
	ctx := context.Background()

	_, err := s.Signup(ctx, SignupRequest{Email: "known@gmail.com", Password: "password123"})
	require.NoError(t, err)

	_, errWrong := s.Login(ctx, "known@gmail.com", "wrongpassword")
	_, errUnknown := s.Login(ctx, "ghost@gmail.com", "password123")

	require.ErrorIs(t, errWrong, common.ErrInvalidCredentials)
	require.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestLogin_PasswordPastBcryptLimitIsRejected(t *testing.T) {
	s := newService(t, repomanager.NewInMemoryRepositoryManager(), testKey(1))
	ctx := context.Background()

	pw := strings.Repeat("p", auth.MaxPasswordBytes)
	_, err := s.Signup(ctx, SignupRequest{Email: "a@gmail.com", Password: pw})
	require.NoError(t, err)

	_, err = s.Login(ctx, "a@gmail.com", pw+"EXTRA")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	res, err := s.Login(ctx, "a@gmail.com", pw)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestLogin_Validation(t *testing.T) {
	s := newService(t, repomanager.NewInMemoryRepositoryManager(), testKey(1))

	_, err := s.Login(context.Background(), "", "x")
	assert.ErrorIs(t, err, common.ErrMissingCredentials)

	_, err = s.Login(context.Background(), "a@yahoo.com", "password123")
	assert.ErrorIs(t, err, common.ErrEmailDomainNotAllowed)
}

func TestAuthenticate_Invalid(t *testing.T) {
	s := newService(t, repomanager.NewInMemoryRepositoryManager(), testKey(1))

	_, err := s.Authenticate("garbage")
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestAuthenticate_Expired(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	codec, err := cryptox.NewEmailCodec(testKey(1))
	require.NoError(t, err)
	tokens := auth.NewTokenService([]byte("k"), auth.WithClock(clock))
	s := NewUserService(nil, repomanager.NewInMemoryRepositoryManager(), codec, tokens, nil, logging.Nop{})

	token, err := tokens.Issue("u-1", "hash", auth.RoleUser)
	require.NoError(t, err)

	now = now.Add(auth.SessionLifetime)
	_, err = s.Authenticate(token)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestRecoverEmail(t *testing.T) {
	rm := repomanager.NewInMemoryRepositoryManager()
	s := newService(t, rm, testKey(1))
	ctx := context.Background()

	res, err := s.Signup(ctx, SignupRequest{Email: "Owner@Gmail.com", Password: "password123"})
	require.NoError(t, err)

	email, err := s.RecoverEmail(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@gmail.com", email)

	_, err = s.RecoverEmail(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	other := newService(t, rm, testKey(2))
	_, err = other.RecoverEmail(ctx, res.User.ID)
	assert.ErrorIs(t, err, common.ErrIntegrity)
}

func TestRecoverEmail_TamperedRecord(t *testing.T) {
	s := newService(t, repomanager.NewInMemoryRepositoryManager(), testKey(1))
	enc, err := s.codec.Encrypt("owner@gmail.com")
	require.NoError(t, err)

	stored := &models.User{ID: "u-1"}
	stored.SetEncryptedEmail(enc)
	stored.EmailCiphertext = enc.Tag

	s.repomanager = &fakeManager{repo: &fakeUsersRepo{getOut: stored}}

	email, err := s.RecoverEmail(context.Background(), "u-1")
	assert.ErrorIs(t, err, common.ErrIntegrity)
	assert.Empty(t, email)
}
