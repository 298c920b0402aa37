package repository

import (
	"context"
	"testing"

	"lingo_learn_client/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreEncryptedRoundTrip(t *testing.T) {
	store := kvstore.NewMemory()
	ts := NewTokenStore(store, "unit-test-key")

	assert.Empty(t, ts.GetToken())

	require.NoError(t, ts.SaveToken("opaque-token-123"))
	assert.Equal(t, "opaque-token-123", ts.GetToken())

	// 落盘内容不应包含明文令牌
	raw, err := store.Get(context.Background(), "auth:token")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "opaque-token-123")

	require.NoError(t, ts.RemoveToken())
	assert.Empty(t, ts.GetToken())
}

func TestTokenStoreWrongKeyYieldsEmpty(t *testing.T) {
	store := kvstore.NewMemory()
	require.NoError(t, NewTokenStore(store, "key-a").SaveToken("tok"))

	// 解密失败不抛错，按无会话处理
	assert.Empty(t, NewTokenStore(store, "key-b").GetToken())
}

func TestTokenStorePlaintextFallback(t *testing.T) {
	store := kvstore.NewMemory()
	ts := NewTokenStore(store, "")

	require.NoError(t, ts.SaveToken("tok"))
	assert.Equal(t, "tok", ts.GetToken())

	raw, err := store.Get(context.Background(), "auth:token")
	require.NoError(t, err)
	assert.Equal(t, "tok", string(raw))
}
