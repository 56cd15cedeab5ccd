package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceBack/internal/models"
)

func TestOTPRepositoryLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	repo := NewOTPRepository(rdb)
	ctx := context.Background()
	expires := time.Now().Add(10 * time.Minute)

	require.NoError(t, repo.Save(ctx, models.OTP{Email: "Admin@Example.com", Code: "123456", Purpose: models.OTPReset, ExpiresAt: expires}))

	otp, err := repo.Get(ctx, "admin@example.com", models.OTPReset)
	require.NoError(t, err)
	assert.Equal(t, "123456", otp.Code)
	assert.Equal(t, 0, otp.Attempts)
	assert.Equal(t, expires.Unix(), otp.ExpiresAt.Unix())

	n, err := repo.IncrementAttempts(ctx, "admin@example.com", models.OTPReset)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repo.Get(ctx, "admin@example.com", models.OTPVerify)
	assert.ErrorIs(t, err, models.ErrNoRecord, "purposes are separate")

	mr.FastForward(11 * time.Minute)
	_, err = repo.Get(ctx, "admin@example.com", models.OTPReset)
	assert.ErrorIs(t, err, models.ErrNoRecord)
}

func TestMemoryOTPRepoExpiry(t *testing.T) {
	repo := NewMemoryOTPRepo()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, models.OTP{Email: "a@b.c", Code: "111111", Purpose: models.OTPVerify, ExpiresAt: now.Add(time.Minute)}))
	_, err := repo.Get(ctx, "a@b.c", models.OTPVerify)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = repo.Get(ctx, "a@b.c", models.OTPVerify)
	assert.ErrorIs(t, err, models.ErrNoRecord)
}
