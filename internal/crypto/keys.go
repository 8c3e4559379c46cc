package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// MasterKeySize is the size of the session master key.
const MasterKeySize = 32

// ErrInvalidKeyLength is returned when the master key is not MasterKeySize bytes.
var ErrInvalidKeyLength = errors.New("invalid key length")

// CookieKeys holds the securecookie key pair derived from the master key.
type CookieKeys struct {
	Hash  []byte // 64 bytes, HMAC-SHA256
	Block []byte // 32 bytes, AES-256
}

// DeriveCookieKeys derives independent hash and block keys from master
// using HKDF-SHA256.
func DeriveCookieKeys(master []byte) (CookieKeys, error) {
	if len(master) != MasterKeySize {
		return CookieKeys{}, ErrInvalidKeyLength
	}
	hash, err := derive(master, "session-cookie-hash", 64)
	if err != nil {
		return CookieKeys{}, err
	}
	block, err := derive(master, "session-cookie-block", 32)
	if err != nil {
		return CookieKeys{}, err
	}
	return CookieKeys{Hash: hash, Block: block}, nil
}

func derive(master []byte, info string, n int) ([]byte, error) {
	h := hkdf.New(sha256.New, master, nil, []byte(info))
	out := make([]byte, n)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, err
	}
	return out, nil
}

// RandomBytes returns n bytes from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// MustRandom returns n random bytes or panics.
func MustRandom(n int) []byte {
	b, err := RandomBytes(n)
	if err != nil {
		panic(err)
	}
	return b
}
