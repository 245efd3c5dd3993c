// Package verification issues and checks the short-lived login codes mailed
// to users.
package verification

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"
)

var (
	ErrCodeInvalid = errors.New("verification: code invalid")
	ErrCodeExpired = errors.New("verification: code expired")
)

const (
	codeDigits = 6
	codeTTL    = 10 * time.Minute
)

type entry struct {
	code      string
	expiresAt time.Time
}

// Store holds one pending code per email. Issuing a new code replaces the
// previous one, and a code is single use.
type Store struct {
	mu      sync.Mutex
	pending map[string]entry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		pending: make(map[string]entry),
		now:     time.Now,
	}
}

// Issue generates a fresh 6-digit code for the email.
func (s *Store) Issue(email string) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	code := fmt.Sprintf("%0*d", codeDigits, n)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[email] = entry{code: code, expiresAt: s.now().Add(codeTTL)}
	return code, nil
}

// Verify consumes the pending code for the email. A wrong code does not
// consume the pending one; a correct-but-expired code does.
func (s *Store) Verify(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.pending[email]
	if !ok || pending.code != code {
		return ErrCodeInvalid
	}
	delete(s.pending, email)
	if s.now().After(pending.expiresAt) {
		return ErrCodeExpired
	}
	return nil
}
