package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
)

type mockLinkCodeStore struct {
	codes map[string]string
	ttl   time.Duration
}

func (m *mockLinkCodeStore) SaveLinkCode(ctx context.Context, code, userID string, ttl time.Duration) error {
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[code] = userID
	m.ttl = ttl
	return nil
}

func (m *mockLinkCodeStore) ConsumeLinkCode(ctx context.Context, code string) (string, error) {
	userID, ok := m.codes[code]
	if !ok {
		return "", appErrors.ErrCodeExpired
	}
	delete(m.codes, code)
	return userID, nil
}

type mockChatBinder struct {
	bound map[string]int64
}

func (m *mockChatBinder) SetTelegramChatID(ctx context.Context, id string, chatID int64) error {
	if m.bound == nil {
		m.bound = make(map[string]int64)
	}
	m.bound[id] = chatID
	return nil
}

func TestGenerateLinkCode(t *testing.T) {
	store := &mockLinkCodeStore{}
	svc := NewTelegramService(store, &mockChatBinder{}, 10*time.Minute, zap.NewNop())

	code, expiry, err := svc.GenerateLinkCode(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, 10*time.Minute, store.ttl)
	assert.True(t, expiry.After(time.Now().UTC()))
}

func TestConfirmLinkBindsChat(t *testing.T) {
	store := &mockLinkCodeStore{}
	binder := &mockChatBinder{}
	svc := NewTelegramService(store, binder, 10*time.Minute, zap.NewNop())

	code, _, err := svc.GenerateLinkCode(context.Background(), "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmLink(context.Background(), code, 42))
	assert.Equal(t, int64(42), binder.bound["user-1"])
}

func TestConfirmLinkCodeIsSingleUse(t *testing.T) {
	store := &mockLinkCodeStore{}
	svc := NewTelegramService(store, &mockChatBinder{}, 10*time.Minute, zap.NewNop())

	code, _, err := svc.GenerateLinkCode(context.Background(), "user-1")
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmLink(context.Background(), code, 42))

	err = svc.ConfirmLink(context.Background(), code, 43)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCodeExpired.Code, appErrors.FromError(err).Code)
}

func TestConfirmLinkRejectsMalformedCode(t *testing.T) {
	svc := NewTelegramService(&mockLinkCodeStore{}, &mockChatBinder{}, 10*time.Minute, zap.NewNop())

	err := svc.ConfirmLink(context.Background(), "123", 42)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
