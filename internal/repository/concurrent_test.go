package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentAccess_SingleStartWins races many MarkStarted calls on a
// file-backed database; the conditional update lets exactly one through.
func TestConcurrentAccess_SingleStartWins(t *testing.T) {
	conn := testutil.NewFileTestDB(t)
	ctx := context.Background()
	user, tag := seedUserTag(t, conn, "racer")
	repo := NewSQLiteSessionRepo(conn)

	sess := testutil.NewTestSession(user.ID, tag.ID, "Contended")
	require.NoError(t, repo.Create(ctx, sess))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := repo.MarkStarted(ctx, user.ID, sess.ID, repoNow.Add(time.Duration(i)*time.Second))
			if err != nil {
				t.Errorf("start %d: %v", i, err)
				return
			}
			if ok {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	fetched, err := repo.GetByID(ctx, user.ID, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionInProgress, fetched.Status)
}

// TestConcurrentAccess_ReadDuringWrite verifies that listing stays consistent
// while another goroutine inserts sessions.
func TestConcurrentAccess_ReadDuringWrite(t *testing.T) {
	conn := testutil.NewFileTestDB(t)
	ctx := context.Background()
	user, tag := seedUserTag(t, conn, "reader")
	repo := NewSQLiteSessionRepo(conn)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			s := testutil.NewTestSession(user.ID, tag.ID, "Item")
			if err := repo.Create(ctx, s); err != nil {
				t.Errorf("writer: create session %d: %v", i, err)
				return
			}
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				list, err := repo.ListByUser(ctx, user.ID)
				if err != nil {
					t.Errorf("reader %d: %v", reader, err)
					return
				}
				for _, s := range list {
					if s.Tag == nil || s.Tag.ID != tag.ID {
						t.Errorf("reader %d: session %s missing joined tag", reader, s.ID)
						return
					}
				}
			}
		}(r)
	}
	wg.Wait()

	list, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 20)
}
