package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// Sealed is the output of one Encrypt call. The three parts are stored in
// separate columns and must travel together.
type Sealed struct {
	Ciphertext []byte
	Nonce      []byte
	AuthTag    []byte
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// Encrypt seals plaintext with AES-256-GCM under key using a new random nonce.
func Encrypt(plaintext, key []byte) (*Sealed, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := randRead(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := gcm.Seal(nil, nonce, plaintext, nil)
	split := len(out) - TagSize

	tag := make([]byte, TagSize)
	copy(tag, out[split:])

	return &Sealed{
		Ciphertext: out[:split:split],
		Nonce:      nonce,
		AuthTag:    tag,
	}, nil
}

// Decrypt opens s under key. Any authentication failure yields
// ErrDecryptionFailed and no plaintext.
func Decrypt(s *Sealed, key []byte) ([]byte, error) {
	if s == nil {
		return nil, ErrDecryptionFailed
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(s.Nonce) != NonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(s.Nonce), NonceSize)
	}
	if len(s.AuthTag) != TagSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidTagSize, len(s.AuthTag), TagSize)
	}

	buf := make([]byte, 0, len(s.Ciphertext)+TagSize)
	buf = append(buf, s.Ciphertext...)
	buf = append(buf, s.AuthTag...)

	plaintext, err := gcm.Open(nil, s.Nonce, buf, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
