package repository

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"lingo_learn_client/pkg/kvstore"
	"lingo_learn_client/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/chacha20poly1305"
)

const tokenKey = "auth:token"

// TokenStore 持久化不透明的bearer令牌，会话是否存在以它为准。
// 配置了加密密钥时令牌静态加密（XChaCha20-Poly1305）；
// 未配置时明文落盘，属于有记录的降级方案。
type TokenStore struct {
	store kvstore.Store
	aead  cipher.AEAD
}

func NewTokenStore(store kvstore.Store, encryptionKey string) *TokenStore {
	ts := &TokenStore{store: store}
	if encryptionKey == "" {
		logger.Log.Warn("token encryption key not configured, token will be stored in plaintext")
		return ts
	}

	sum := sha256.Sum256([]byte(encryptionKey))
	aead, err := chacha20poly1305.NewX(sum[:])
	if err != nil {
		// 密钥经过摘要后长度固定，到这里只可能是库内部错误
		logger.Log.Error("failed to initialize token cipher, falling back to plaintext", zap.Error(err))
		return ts
	}
	ts.aead = aead
	return ts
}

func (t *TokenStore) SaveToken(token string) error {
	data := []byte(token)
	if t.aead != nil {
		nonce := make([]byte, t.aead.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return err
		}
		data = t.aead.Seal(nonce, nonce, data, nil)
	}
	return t.store.Set(context.Background(), tokenKey, data)
}

// GetToken 失败时返回空串并记录日志，绝不向上抛出
func (t *TokenStore) GetToken() string {
	data, err := t.store.Get(context.Background(), tokenKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			logger.Log.Warn("failed to read token", zap.Error(err))
		}
		return ""
	}

	if t.aead == nil {
		return string(data)
	}

	if len(data) < t.aead.NonceSize() {
		logger.Log.Warn("stored token too short to decrypt")
		return ""
	}
	nonce, ciphertext := data[:t.aead.NonceSize()], data[t.aead.NonceSize():]
	plain, err := t.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		logger.Log.Warn("failed to decrypt token", zap.Error(err))
		return ""
	}
	return string(plain)
}

func (t *TokenStore) RemoveToken() error {
	return t.store.Delete(context.Background(), tokenKey)
}
