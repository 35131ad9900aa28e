package util

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var (
	jwtSecretValue = getEnv("JWTSECRET", "")
	jwtSecretByte  = []byte(jwtSecretValue)
	jwtMutex       sync.RWMutex
)

// Argon2id parameters. Changing these invalidates no stored hashes
// because each hash records its own parameters.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32

	argonPrefix = "argon2id$"
)

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}

// SetJWTSecret updates the secret used for token signing and legacy
// password hashing. Thread-safe; tests relying on a deterministic secret
// should avoid parallel execution.
func SetJWTSecret(secret string) {
	jwtMutex.Lock()
	defer jwtMutex.Unlock()
	jwtSecretByte = []byte(secret)
}

// GetJWTSecretByte returns a copy of the current JWT secret bytes.
func GetJWTSecretByte() []byte {
	jwtMutex.RLock()
	defer jwtMutex.RUnlock()
	return append([]byte(nil), jwtSecretByte...)
}

// HashPasswordLegacy is the HMAC-SHA256 scheme older accounts were
// stored with. Kept only so those hashes can still be verified and
// upgraded on the next successful login.
func HashPasswordLegacy(password string) string {
	h := hmac.New(sha256.New, GetJWTSecretByte())
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateSalt returns a random 16-byte hex-encoded salt.
func GenerateSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPasswordArgon2 derives an argon2id hash of password with the given
// hex salt. The result embeds the parameters used:
// argon2id$v=19$m=65536,t=1,p=4$<hash-hex>
func HashPasswordArgon2(password, salt string) (string, error) {
	saltBytes, err := hex.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("invalid salt encoding: %w", err)
	}
	key := argon2.IDKey([]byte(password), saltBytes, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s",
		argonPrefix, argon2.Version, argonMemory, argonTime, argonThreads,
		hex.EncodeToString(key)), nil
}

// VerifyPassword checks plain against the stored hash in constant time.
// Argon2id hashes are verified with the stored salt; anything without the
// argon2id prefix falls back to the legacy HMAC scheme.
func VerifyPassword(plain, stored, salt string) (bool, error) {
	if strings.HasPrefix(stored, argonPrefix) {
		recomputed, err := HashPasswordArgon2(plain, salt)
		if err != nil {
			return false, err
		}
		return subtle.ConstantTimeCompare([]byte(recomputed), []byte(stored)) == 1, nil
	}

	legacy := HashPasswordLegacy(plain)
	return subtle.ConstantTimeCompare([]byte(legacy), []byte(stored)) == 1, nil
}

// IsLegacyHash reports whether a stored password predates argon2id.
func IsLegacyHash(stored string) bool {
	return !strings.HasPrefix(stored, argonPrefix)
}
