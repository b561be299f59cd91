package tokenseal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	s, err := New("a-session-secret-of-reasonable-length")
	require.NoError(t, err)

	sealed, err := s.Seal("eyJhbGciOi.payload.sig")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "payload")

	got, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi.payload.sig", got)
}

func TestSeal_NonceVaries(t *testing.T) {
	s, err := New("secret")
	require.NoError(t, err)

	a, _ := s.Seal("same")
	b, _ := s.Seal("same")
	assert.NotEqual(t, a, b)
}

func TestOpen_Rejects(t *testing.T) {
	s1, _ := New("secret-one")
	s2, _ := New("secret-two")

	sealed, err := s1.Seal("token")
	require.NoError(t, err)

	_, err = s2.Open(sealed)
	assert.ErrorIs(t, err, ErrOpen, "other key")

	_, err = s1.Open("!!not base64!!")
	assert.ErrorIs(t, err, ErrOpen, "bad encoding")

	_, err = s1.Open("c2hvcnQ")
	assert.ErrorIs(t, err, ErrOpen, "too short")
}

func TestNew_EmptySecret(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrShortSecret)
}
