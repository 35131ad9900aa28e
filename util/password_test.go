package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPasswordArgon2_NeverPlaintext(t *testing.T) {
	salt, err := GenerateSalt()
	assert.NoError(t, err)

	hashed, err := HashPasswordArgon2("gizli-parola", salt)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(hashed, "argon2id$"))
	assert.NotContains(t, hashed, "gizli-parola")
}

func TestVerifyPassword_Argon2Roundtrip(t *testing.T) {
	salt, err := GenerateSalt()
	assert.NoError(t, err)

	hashed, err := HashPasswordArgon2("correct-horse", salt)
	assert.NoError(t, err)

	ok, err := VerifyPassword("correct-horse", hashed, salt)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-horse", hashed, salt)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_DifferentSaltsDiffer(t *testing.T) {
	saltA, _ := GenerateSalt()
	saltB, _ := GenerateSalt()
	assert.NotEqual(t, saltA, saltB)

	hashA, _ := HashPasswordArgon2("same-password", saltA)
	hashB, _ := HashPasswordArgon2("same-password", saltB)
	assert.NotEqual(t, hashA, hashB)
}

func TestVerifyPassword_LegacyHMAC(t *testing.T) {
	SetJWTSecret("legacy-test-secret")

	legacy := HashPasswordLegacy("eski-parola")
	assert.True(t, IsLegacyHash(legacy))

	ok, err := VerifyPassword("eski-parola", legacy, "")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("baska-parola", legacy, "")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_BadSaltEncoding(t *testing.T) {
	_, err := HashPasswordArgon2("pw", "not-hex!")
	assert.Error(t, err)

	ok, err := VerifyPassword("pw", "argon2id$v=19$m=65536,t=1,p=4$deadbeef", "not-hex!")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestIsLegacyHash(t *testing.T) {
	assert.True(t, IsLegacyHash("abcdef0123"))
	assert.False(t, IsLegacyHash("argon2id$v=19$m=65536,t=1,p=4$aa"))
}
