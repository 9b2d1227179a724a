package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/memory"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/persistence/middleware"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func sampleState() *domain.SessionState {
	state := domain.NewSessionState("personal-training", "enc", 2)
	state.Answers["goals"] = domain.MultiValue("strength")
	state.Answers[domain.ContactKey] = domain.ContactValue(domain.Contact{Name: "Jo", Email: "jo@example.com"})
	state.CompletedStepIndices = []int{0}
	return state
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunStateStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	key := "personal-training:enc"

	if err := secureStore.Save(ctx, key, sampleState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	storedState, err := underlyingStore.Load(ctx, key)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if storedState.Answers.Has(domain.ContactKey) {
		t.Fatalf("Expected contact to be hidden, found: %v", storedState.Answers[domain.ContactKey])
	}
	if storedState.CurrentStepIndex != 0 {
		t.Errorf("Expected cursor to be hidden, got %d", storedState.CurrentStepIndex)
	}
	if storedState.FlowID != "personal-training" {
		t.Errorf("Expected flow id to stay readable, got %q", storedState.FlowID)
	}

	loadedState, err := secureStore.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loadedState.Answers.Contact().Email != "jo@example.com" {
		t.Errorf("Expected decrypted email, got %v", loadedState.Answers.Contact())
	}
	if loadedState.CurrentStepIndex != 2 {
		t.Errorf("Expected cursor 2, got %d", loadedState.CurrentStepIndex)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)

	ctx := context.Background()
	key := "personal-training:rotation"
	if err := secureStoreOld.Save(ctx, key, sampleState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loadedState, err := secureStoreNew.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if !loadedState.Answers.Contains("goals", "strength") {
		t.Errorf("Decryption with fallback key failed")
	}

	if err := secureStoreNew.Save(ctx, key, loadedState); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}
	if _, err := secureStoreOld.Load(ctx, key); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_RejectsPlaintext(t *testing.T) {
	underlyingStore := NewMockStore()
	_ = underlyingStore.Save(context.Background(), "k", sampleState())

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	if _, err := secureStore.Load(context.Background(), "k"); err == nil {
		t.Error("Expected plaintext state to be rejected")
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}
