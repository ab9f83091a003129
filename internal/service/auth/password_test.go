package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)

	digest, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", digest)

	assert.NoError(t, h.Compare(digest, "correct horse battery staple"))
	assert.ErrorIs(t, h.Compare(digest, "wrong"), bcrypt.ErrMismatchedHashAndPassword)

	again, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, digest, again, "digests should be salted")
}

func TestBcryptHasherRejectsLongPasswords(t *testing.T) {
	t.Parallel()

	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.Error(t, err)
}

func TestNewBcryptHasherCostFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}
