package users

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/dmitrijs2005/expensekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_CreateAndLookup(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	u, err := r.Create(ctx, sampleUser())
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byHash, err := r.GetByEmailHash(ctx, "hash")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byHash.ID)

	byID, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "enc", byID.EmailCiphertext)

	_, err = r.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.GetByEmailHash(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInMemory_ReturnsCopies(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	u, err := r.Create(ctx, sampleUser())
	require.NoError(t, err)
	u.PasswordDigest = "mutated"

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$12$digest", got.PasswordDigest)
}

func TestInMemory_ConcurrentDuplicatesExactlyOneWins(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	const n = 32
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		dups int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Create(ctx, &models.User{EmailHash: "same"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, common.ErrDuplicateIdentity):
				dups++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dups)
}

func TestInMemory_CanceledContext(t *testing.T) {
	r := NewInMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Create(ctx, sampleUser())
	assert.ErrorIs(t, err, context.Canceled)
}
