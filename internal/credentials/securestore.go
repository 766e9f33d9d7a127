package credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
)

// SecureStore persists credentials in an encrypted file. Values are stored
// as a JSON map encrypted with ChaCha20-Poly1305, a modern AEAD cipher that
// performs well on CPUs without AES hardware acceleration.
type SecureStore struct {
	path string
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
		NonceSize() int
	}
}

// NewSecureStore creates a store backed by the file at path. The key is
// hashed with SHA-256 to produce a consistent 32-byte cipher key.
func NewSecureStore(path, key string) (*SecureStore, error) {
	if key == "" {
		return nil, fmt.Errorf("secure store key is empty")
	}
	hasher := sha256.New()
	hasher.Write([]byte(key))
	aead, err := chacha20poly1305.New(hasher.Sum(nil))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return &SecureStore{path: path, aead: aead}, nil
}

// Load reads and decrypts the store. A missing file yields an empty map.
func (s *SecureStore) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, fmt.Errorf("store file too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt store: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(plaintext, &values); err != nil {
		return nil, fmt.Errorf("parse store: %w", err)
	}
	return values, nil
}

// Store encrypts and writes the full credential map, replacing the file.
func (s *SecureStore) Store(values map[string]string) error {
	plaintext, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	ciphertext := s.aead.Seal(nonce, nonce, plaintext, nil)

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, ciphertext, 0o600); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}
