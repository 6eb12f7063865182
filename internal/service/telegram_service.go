package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
)

type linkCodeStore interface {
	SaveLinkCode(ctx context.Context, code, userID string, ttl time.Duration) error
	ConsumeLinkCode(ctx context.Context, code string) (string, error)
}

type chatBinder interface {
	SetTelegramChatID(ctx context.Context, id string, chatID int64) error
}

// TelegramService links messaging identities to user accounts via a
// time-boxed 6-digit code. The workflow core stays identity-agnostic:
// once linked, requests from the bot act on the resolved user id.
type TelegramService struct {
	codes  linkCodeStore
	users  chatBinder
	ttl    time.Duration
	logger *zap.Logger
}

// NewTelegramService constructs the service.
func NewTelegramService(codes linkCodeStore, users chatBinder, ttl time.Duration, logger *zap.Logger) *TelegramService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelegramService{codes: codes, users: users, ttl: ttl, logger: logger}
}

// GenerateLinkCode creates a fresh 6-digit code bound to the user.
func (s *TelegramService) GenerateLinkCode(ctx context.Context, userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, appErrors.ErrUnauthorized
	}
	code, err := randomCode()
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate link code")
	}
	if err := s.codes.SaveLinkCode(ctx, code, userID, s.ttl); err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store link code")
	}
	return code, time.Now().UTC().Add(s.ttl), nil
}

// ConfirmLink consumes the code and binds the chat id to its user.
func (s *TelegramService) ConfirmLink(ctx context.Context, code string, chatID int64) error {
	if len(code) != 6 {
		return appErrors.Clone(appErrors.ErrValidation, "link code must be 6 digits")
	}
	userID, err := s.codes.ConsumeLinkCode(ctx, code)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrCodeExpired) {
			return err
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume link code")
	}
	if err := s.users.SetTelegramChatID(ctx, userID, chatID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bind chat id")
	}
	s.logger.Info("telegram account linked", zap.String("user_id", userID), zap.Int64("chat_id", chatID))
	return nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
