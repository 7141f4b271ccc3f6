package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMintParseRoundTrip(t *testing.T) {
	s := NewSigner("secret")

	raw, err := s.Mint(4, 12)
	require.NoError(t, err)

	claims, err := s.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, 4, claims.UserID)
	require.Equal(t, 12, claims.SessionID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	raw, err := NewSigner("secret").Mint(1, 1)
	require.NoError(t, err)

	_, err = NewSigner("other").Parse(raw)
	require.Error(t, err)
}

func TestParseRejectsEmptyToken(t *testing.T) {
	_, err := NewSigner("secret").Parse("")
	require.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewSigner("secret").Parse("not.a.token")
	require.Error(t, err)
}
