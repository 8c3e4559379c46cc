package files

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"freightportal/internal/crypto"
)

const keyFilePerms = 0o600

// ErrKeyExists is returned when WriteMasterKey would overwrite a key file.
var ErrKeyExists = errors.New("session key file already exists")

// ReadMasterKey reads a hex encoded session master key.
func ReadMasterKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("master key hex decode error: %w", err)
	}
	if len(b) != crypto.MasterKeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes (hex %d chars)",
			crypto.ErrInvalidKeyLength, crypto.MasterKeySize, crypto.MasterKeySize*2)
	}
	return b, nil
}

// WriteMasterKey writes key hex encoded. It refuses to replace an existing file.
func WriteMasterKey(path string, key []byte) error {
	if len(key) != crypto.MasterKeySize {
		return crypto.ErrInvalidKeyLength
	}
	if FileExists(path) {
		return fmt.Errorf("%w: %s", ErrKeyExists, path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create key directory: %w", err)
		}
	}
	if err := atomic.WriteFile(path, strings.NewReader(hex.EncodeToString(key)+"\n")); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	// atomic.WriteFile doesn't set permissions for new files
	if err := os.Chmod(path, keyFilePerms); err != nil {
		return fmt.Errorf("failed to set key file permissions: %w", err)
	}
	return nil
}

// LoadOrCreateMasterKey returns the key stored at path, generating and
// storing a new one when the file does not exist yet.
func LoadOrCreateMasterKey(path string) (key []byte, created bool, err error) {
	key, err = ReadMasterKey(path)
	if err == nil {
		return key, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}
	key = crypto.MustRandom(crypto.MasterKeySize)
	if err := WriteMasterKey(path, key); err != nil {
		return nil, false, err
	}
	return key, true, nil
}

// FileExists checks if the given file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
