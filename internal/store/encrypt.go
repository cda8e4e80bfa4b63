package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// encryptor seals and opens node symbol blobs at rest.
type encryptor interface {
	Encrypt(key, nonce, plaintext, aad []byte) ([]byte, error)
	Decrypt(key, nonce, ciphertext, aad []byte) ([]byte, error)
	NonceSize() int
	KeyLen() int
}

type xchacha20 struct{}

func (xchacha20) KeyLen() int    { return 32 }
func (xchacha20) NonceSize() int { return chacha20poly1305.NonceSizeX }

func (xchacha20) Encrypt(key, nonce, plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

func (xchacha20) Decrypt(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ciphertext, aad)
}

type aesGCM struct{}

func (aesGCM) KeyLen() int    { return 32 }
func (aesGCM) NonceSize() int { return 12 }

func (aesGCM) Encrypt(key, nonce, plaintext, aad []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, nonce, plaintext, aad), nil
}

func (aesGCM) Decrypt(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, nonce, ciphertext, aad)
}

func encryptorFor(algo string) (encryptor, error) {
	switch algo {
	case "xchacha20poly1305":
		return xchacha20{}, nil
	case "aesgcm":
		return aesGCM{}, nil
	default:
		return nil, fmt.Errorf("unsupported encryption algorithm: %s", algo)
	}
}

func deriveKey(masterKey, salt, info []byte, keyLen int) ([]byte, error) {
	kdf := hkdf.New(sha256.New, masterKey, salt, info)
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// Cipher encrypts/decrypts node symbol blobs for one graph instance. A zero
// Cipher (what mode "off" yields) is a pass-through.
type Cipher struct {
	enc encryptor
	key []byte
}

// NewCipher builds a Cipher from configuration. mode "off" or an empty
// master key yields a pass-through cipher.
func NewCipher(mode, masterKeyHex, algo string) (*Cipher, error) {
	if mode == "off" || masterKeyHex == "" {
		return &Cipher{}, nil
	}

	masterKey, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid master key hex: %w", err)
	}
	enc, err := encryptorFor(algo)
	if err != nil {
		return nil, err
	}
	key, err := deriveKey(masterKey, []byte("csgraph/nodes"), []byte("v1"), enc.KeyLen())
	if err != nil {
		return nil, err
	}
	return &Cipher{enc: enc, key: key}, nil
}

// Seal encrypts plaintext, prefixing the nonce. A pass-through Cipher
// returns plaintext unchanged.
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	if c.enc == nil {
		return plaintext, nil
	}
	nonce := make([]byte, c.enc.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ciphertext, err := c.enc.Encrypt(c.key, nonce, plaintext, nil)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(nonce)+len(ciphertext))
	copy(out, nonce)
	copy(out[len(nonce):], ciphertext)
	return out, nil
}

// Open decrypts data sealed by Seal. A pass-through Cipher returns data
// unchanged.
func (c *Cipher) Open(data []byte) ([]byte, error) {
	if c.enc == nil {
		return data, nil
	}
	nonceSize := c.enc.NonceSize()
	if len(data) < nonceSize {
		return nil, fmt.Errorf("encrypted symbol blob too short")
	}
	return c.enc.Decrypt(c.key, data[:nonceSize], data[nonceSize:], nil)
}
