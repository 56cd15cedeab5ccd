package repositories

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
)

// CounterRepo allocates sequence values from the sequence_counters table with a
// single upsert-and-increment statement, so concurrent callers serialize on the row.
type CounterRepo struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewCounterRepo(db *sql.DB, dialect Dialect) *CounterRepo {
	return &CounterRepo{DB: db, Dialect: dialect}
}

func (r *CounterRepo) Next(ctx context.Context, name string) (int64, error) {
	if r.Dialect == Postgres {
		var seq int64
		err := r.DB.QueryRowContext(ctx, `INSERT INTO sequence_counters (name, seq, updated_at)
			VALUES ($1, 1, NOW())
			ON CONFLICT (name) DO UPDATE SET seq = sequence_counters.seq + 1, updated_at = NOW()
			RETURNING seq`, name).Scan(&seq)
		return seq, err
	}

	// LAST_INSERT_ID(expr) makes the new value come back in the OK packet of
	// this same statement.
	res, err := r.DB.ExecContext(ctx, `INSERT INTO sequence_counters (name, seq, updated_at)
		VALUES (?, LAST_INSERT_ID(1), NOW())
		ON DUPLICATE KEY UPDATE seq = LAST_INSERT_ID(seq + 1), updated_at = NOW()`, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RedisCounter allocates sequence values with INCR.
type RedisCounter struct {
	RDB    *redis.Client
	Prefix string
}

func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{RDB: rdb, Prefix: "seq:"}
}

func (c *RedisCounter) Next(ctx context.Context, name string) (int64, error) {
	return c.RDB.Incr(ctx, c.Prefix+name).Result()
}
