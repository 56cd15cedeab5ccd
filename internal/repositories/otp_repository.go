package repositories

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"invoiceBack/internal/models"
)

// OTPRepository keeps one-time codes in Redis hashes that expire with the code.
type OTPRepository struct {
	RDB *redis.Client
}

func NewOTPRepository(rdb *redis.Client) *OTPRepository {
	return &OTPRepository{RDB: rdb}
}

func otpKey(email string, purpose models.OTPPurpose) string {
	return "otp:" + string(purpose) + ":" + strings.ToLower(strings.TrimSpace(email))
}

// Save replaces any outstanding code for the same email and purpose.
func (r *OTPRepository) Save(ctx context.Context, otp models.OTP) error {
	key := otpKey(otp.Email, otp.Purpose)
	_, err := r.RDB.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"code", otp.Code,
			"attempts", 0,
			"expires_at", otp.ExpiresAt.Unix(),
		)
		pipe.ExpireAt(ctx, key, otp.ExpiresAt)
		return nil
	})
	return err
}

func (r *OTPRepository) Get(ctx context.Context, email string, purpose models.OTPPurpose) (models.OTP, error) {
	fields, err := r.RDB.HGetAll(ctx, otpKey(email, purpose)).Result()
	if err != nil {
		return models.OTP{}, err
	}
	if len(fields) == 0 {
		return models.OTP{}, models.ErrNoRecord
	}
	attempts, _ := strconv.Atoi(fields["attempts"])
	expires, _ := strconv.ParseInt(fields["expires_at"], 10, 64)
	return models.OTP{
		Email:     email,
		Code:      fields["code"],
		Purpose:   purpose,
		Attempts:  attempts,
		ExpiresAt: time.Unix(expires, 0),
	}, nil
}

func (r *OTPRepository) IncrementAttempts(ctx context.Context, email string, purpose models.OTPPurpose) (int, error) {
	n, err := r.RDB.HIncrBy(ctx, otpKey(email, purpose), "attempts", 1).Result()
	return int(n), err
}

func (r *OTPRepository) Delete(ctx context.Context, email string, purpose models.OTPPurpose) error {
	return r.RDB.Del(ctx, otpKey(email, purpose)).Err()
}
