package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"sync"

	"github.com/aussiebroadwan/tokengate/pkg/cryptox"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet holds the public keys assertions are verified with, indexed by kid.
type KeySet struct {
	mu  sync.RWMutex
	pub map[string]any // *rsa.PublicKey | ed25519.PublicKey | *ecdsa.PublicKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{pub: make(map[string]any)}
}

// Add registers a public key under kid.
func (k *KeySet) Add(kid string, key any) error {
	switch key.(type) {
	case ed25519.PublicKey, *ecdsa.PublicKey, *rsa.PublicKey:
	default:
		return fmt.Errorf("jwtx: unsupported key type %T", key)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub[kid] = key
	return nil
}

// AddPEM parses a PEM public key and registers it under kid.
func (k *KeySet) AddPEM(kid string, data []byte) error {
	key, err := cryptox.ParsePublicKeyPEM(data)
	if err != nil {
		return fmt.Errorf("jwtx: key %q: %w", kid, err)
	}
	return k.Add(kid, key)
}

// Get returns the key for kid. An empty kid resolves only when the set holds
// exactly one key.
func (k *KeySet) Get(kid string) (any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if kid == "" && len(k.pub) == 1 {
		for _, pk := range k.pub {
			return pk, nil
		}
	}
	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// Len reports how many keys are loaded.
func (k *KeySet) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub)
}
