package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the key length accepted by both ciphers.
const KeySize = 32

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// ErrCiphertextTooShort is returned when a sealed value is shorter than
// its nonce.
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Cipher provides authenticated encryption.
type Cipher interface {
	Type() CipherType
	Encrypt(plaintext, additionalData []byte) ([]byte, error)
	Decrypt(ciphertext, additionalData []byte) ([]byte, error)
}

// New returns the preferred cipher for this host.
func New(key []byte) (Cipher, error) {
	return NewWithType(key, Preferred())
}

// Preferred reports the cipher New would pick.
// Go uses AES instructions on amd64 and arm64; other targets get ChaCha20.
func Preferred() CipherType {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return CipherAESGCM
	default:
		return CipherChaCha20
	}
}

// NewWithType creates a cipher of the given type. The key must be KeySize
// bytes.
func NewWithType(key []byte, cipherType CipherType) (Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size %d: must be %d bytes", len(key), KeySize)
	}

	var (
		a   cipher.AEAD
		err error
	)
	switch cipherType {
	case CipherAESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			a, err = cipher.NewGCM(block)
		}
	case CipherChaCha20:
		a, err = chacha20poly1305.New(key)
	default:
		return nil, errors.New("unknown cipher type: " + string(cipherType))
	}
	if err != nil {
		return nil, err
	}
	return &aead{typ: cipherType, aead: a}, nil
}

type aead struct {
	typ  CipherType
	aead cipher.AEAD
}

func (c *aead) Type() CipherType {
	return c.typ
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *aead) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

// Decrypt opens a value produced by Encrypt.
func (c *aead) Decrypt(ciphertext, additionalData []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(ciphertext) < n {
		return nil, ErrCiphertextTooShort
	}
	return c.aead.Open(nil, ciphertext[:n], ciphertext[n:], additionalData)
}
