package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	j := NewJWT("test-secret")

	token, err := j.Sign("jane.doe@example.com")
	require.NoError(t, err)

	email, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", email)
}

func TestJWTRejectsForeignToken(t *testing.T) {
	token, err := NewJWT("secret-a").Sign("x@example.com")
	require.NoError(t, err)

	_, err = NewJWT("secret-b").Verify(token)
	assert.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	_, err := NewJWT("secret").Verify("not-a-token")
	assert.Error(t, err)
}

func TestDeriveName(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{email: "jane.doe@example.com", want: "Jane Doe"},
		{email: "john_smith@example.com", want: "John Smith"},
		{email: "solo@example.com", want: "Solo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveName(tt.email))
	}
}
