package repositories

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterRepoMySQLUsesLastInsertID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE seq = LAST_INSERT_ID(seq + 1)")).
		WithArgs("invoice").
		WillReturnResult(sqlmock.NewResult(42, 2))

	seq, err := NewCounterRepo(db, MySQL).Next(context.Background(), "invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(42), seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterRepoPostgresReturning(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (name) DO UPDATE SET seq = sequence_counters.seq + 1")).
		WithArgs("invoice").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(1)))

	seq, err := NewCounterRepo(db, Postgres).Next(context.Background(), "invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterRepoSurfacesStorageErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO sequence_counters").WillReturnError(assert.AnError)

	_, err = NewCounterRepo(db, MySQL).Next(context.Background(), "invoice")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRedisCounterConcurrentAllocationsAreUnique(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	counter := NewRedisCounter(rdb)
	const n = 50

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := counter.Next(context.Background(), "invoice")
			if err != nil {
				t.Errorf("Next: %v", err)
				return
			}
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "missing value %d", i)
	}

	other, err := counter.Next(context.Background(), "receipt")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other, "domains are independent")
}

func TestMemoryCounterConcurrentAllocationsAreUnique(t *testing.T) {
	counter := NewMemoryCounter()
	const n = 100

	results := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _ := counter.Next(context.Background(), "invoice")
			results <- v
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool, n)
	for v := range results {
		assert.False(t, seen[v], "duplicate value %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, n)
}
