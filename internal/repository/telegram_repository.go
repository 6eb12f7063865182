package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
)

const linkCodePrefix = "telegram:link:"

// TelegramRepository stores time-boxed account-linking codes in Redis.
// Expiry is handled by the TTL; an absent key and an expired one look the
// same to callers, which is the intended behaviour.
type TelegramRepository struct {
	client *redis.Client
}

// NewTelegramRepository constructs a new repository.
func NewTelegramRepository(client *redis.Client) *TelegramRepository {
	return &TelegramRepository{client: client}
}

// SaveLinkCode binds the code to the user for the given TTL.
func (r *TelegramRepository) SaveLinkCode(ctx context.Context, code, userID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, linkCodePrefix+code, userID, ttl).Err(); err != nil {
		return fmt.Errorf("save link code: %w", err)
	}
	return nil
}

// ConsumeLinkCode resolves the code to a user id and removes it so the
// code is single-use. Returns ErrCodeExpired for unknown or expired codes.
func (r *TelegramRepository) ConsumeLinkCode(ctx context.Context, code string) (string, error) {
	key := linkCodePrefix + code
	userID, err := r.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", appErrors.ErrCodeExpired
		}
		return "", fmt.Errorf("consume link code: %w", err)
	}
	return userID, nil
}
