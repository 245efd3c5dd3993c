package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	s := NewStore()

	code, err := s.Issue("alex@example.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	require.NoError(t, s.Verify("alex@example.com", code))

	// single use
	assert.ErrorIs(t, s.Verify("alex@example.com", code), ErrCodeInvalid)
}

func TestVerifyWrongCode(t *testing.T) {
	s := NewStore()

	code, err := s.Issue("alex@example.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.ErrorIs(t, s.Verify("alex@example.com", wrong), ErrCodeInvalid)

	// the pending code survives a wrong guess
	require.NoError(t, s.Verify("alex@example.com", code))
}

func TestVerifyUnknownEmail(t *testing.T) {
	s := NewStore()
	assert.ErrorIs(t, s.Verify("nobody@example.com", "123456"), ErrCodeInvalid)
}

func TestIssueReplacesPreviousCode(t *testing.T) {
	s := NewStore()

	first, err := s.Issue("alex@example.com")
	require.NoError(t, err)
	second, err := s.Issue("alex@example.com")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, s.Verify("alex@example.com", first), ErrCodeInvalid)
	}
	require.NoError(t, s.Verify("alex@example.com", second))
}

func TestVerifyExpiredCode(t *testing.T) {
	s := NewStore()

	now := time.Now()
	s.now = func() time.Time { return now }

	code, err := s.Issue("alex@example.com")
	require.NoError(t, err)

	s.now = func() time.Time { return now.Add(codeTTL + time.Second) }
	assert.ErrorIs(t, s.Verify("alex@example.com", code), ErrCodeExpired)

	// expiry consumed the code
	assert.ErrorIs(t, s.Verify("alex@example.com", code), ErrCodeInvalid)
}
