package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/ports"
)

// envelopeKey is the answer key holding the ciphertext in an encrypted envelope.
const envelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.StateStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts state using AES-GCM (Envelope Encryption).
// Answers and cursor are hidden; only the flow and session identifiers stay readable.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, key string, state *domain.SessionState) error {
	plainText, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt state: %w", err)
	}

	envelope := domain.NewSessionState(state.FlowID, state.SessionID, 0)
	envelope.UpdatedAt = state.UpdatedAt
	envelope.Answers[envelopeKey] = domain.TextValue(base64.StdEncoding.EncodeToString(ciphertext))

	return m.next.Save(ctx, key, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, key string) (*domain.SessionState, error) {
	envelope, err := m.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	// Fail secure: a configured encryption layer never returns plaintext state.
	encrypted, ok := envelope.Answers[envelopeKey]
	if !ok || encrypted.Kind != domain.KindText {
		return nil, errors.New("state is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encrypted.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt state: %w", err)
	}

	var state domain.SessionState
	if err := json.Unmarshal(plainText, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted state: %w", err)
	}
	if state.Answers == nil {
		state.Answers = make(domain.Answers)
	}
	return &state, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
