package identity

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const vaultVersion = 1

// kdfParams are stored alongside the ciphertext so they can be raised later
// without breaking existing vaults.
type kdfParams struct {
	Time    uint32 `json:"time"`
	Memory  uint32 `json:"memory"` // KiB
	Threads uint8  `json:"threads"`
	Salt    []byte `json:"salt"`
}

var defaultKDF = kdfParams{Time: 1, Memory: 64 * 1024, Threads: 4}

// sealedFile is the on-disk vault layout.
type sealedFile struct {
	Version int       `json:"version"`
	KDF     kdfParams `json:"kdf"`
	Nonce   []byte    `json:"nonce"`
	Data    []byte    `json:"data"`
}

func newKDF() (kdfParams, error) {
	p := defaultKDF
	p.Salt = make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, p.Salt); err != nil {
		return kdfParams{}, fmt.Errorf("generate salt: %w", err)
	}
	return p, nil
}

// key derives a 32-byte AES-256 key with Argon2id.
func (p kdfParams) key(password []byte) []byte {
	return argon2.IDKey(password, p.Salt, p.Time, p.Memory, p.Threads, 32)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal encrypts plaintext under key into a sealedFile.
func seal(key []byte, kdf kdfParams, plaintext []byte) (sealedFile, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return sealedFile{}, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return sealedFile{}, err
	}
	return sealedFile{
		Version: vaultVersion,
		KDF:     kdf,
		Nonce:   nonce,
		Data:    gcm.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// open decrypts a sealedFile. Any authentication failure is ErrDecrypt.
func open(key []byte, sf sealedFile) ([]byte, error) {
	if sf.Version != vaultVersion {
		return nil, fmt.Errorf("unsupported vault version %d", sf.Version)
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(sf.Nonce) != gcm.NonceSize() {
		return nil, errors.New("vault nonce has wrong size")
	}
	plaintext, err := gcm.Open(nil, sf.Nonce, sf.Data, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
