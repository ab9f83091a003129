package mocks

import (
	"errors"
	"strings"
	"sync"
)

// ErrPasswordMismatch is returned by MockPasswordHasher.Compare on mismatch.
var ErrPasswordMismatch = errors.New("password mismatch")

const mockDigestPrefix = "digest:"

// MockPasswordHasher implements auth.PasswordHasher without bcrypt's cost.
// Digests are the password with a fixed prefix.
type MockPasswordHasher struct {
	// HashErr, when set, is returned by Hash
	HashErr error

	mu           sync.Mutex
	compareCalls int
}

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return mockDigestPrefix + password, nil
}

// Compare implements auth.PasswordHasher.
func (m *MockPasswordHasher) Compare(digest, password string) error {
	m.mu.Lock()
	m.compareCalls++
	m.mu.Unlock()

	if !strings.HasPrefix(digest, mockDigestPrefix) || digest != mockDigestPrefix+password {
		return ErrPasswordMismatch
	}
	return nil
}

// CompareCallCount reports how many times Compare ran.
func (m *MockPasswordHasher) CompareCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compareCalls
}
