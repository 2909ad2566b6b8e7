package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// VerificationCode is a pending SMS login code: the bcrypt hash of the code
// plus the number of failed verification attempts.
type VerificationCode struct {
	Hash     string
	Attempts int
}

// CodeRepository stores pending verification codes. Codes expire on their
// own (TTL) and are removed on successful use, so each code is single-use.
type CodeRepository interface {
	Save(ctx context.Context, phone, codeHash string, ttl time.Duration) error
	Get(ctx context.Context, phone string) (*VerificationCode, error)
	IncrementAttempts(ctx context.Context, phone string) (int, error)
	Delete(ctx context.Context, phone string) error
}

type codeRepository struct {
	client *redis.Client
}

func NewCodeRepository(client *redis.Client) CodeRepository {
	return &codeRepository{client: client}
}

func codeKey(phone string) string {
	return fmt.Sprintf("smscode:%s", phone)
}

// Save replaces any previous code for the phone and arms the expiry
func (r *codeRepository) Save(ctx context.Context, phone, codeHash string, ttl time.Duration) error {
	key := codeKey(phone)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, "hash", codeHash, "attempts", 0)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Get returns the pending code for the phone, or nil when none exists or it
// has expired
func (r *codeRepository) Get(ctx context.Context, phone string) (*VerificationCode, error) {
	values, err := r.client.HGetAll(ctx, codeKey(phone)).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}

	attempts, _ := strconv.Atoi(values["attempts"])
	return &VerificationCode{
		Hash:     values["hash"],
		Attempts: attempts,
	}, nil
}

func (r *codeRepository) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	attempts, err := r.client.HIncrBy(ctx, codeKey(phone), "attempts", 1).Result()
	if err != nil {
		return 0, err
	}
	return int(attempts), nil
}

func (r *codeRepository) Delete(ctx context.Context, phone string) error {
	return r.client.Del(ctx, codeKey(phone)).Err()
}
