package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeMultiFieldToken(t *testing.T) {
	uid := "2026-03-01/1772353800000000042/abcd1234"
	token := EncodeMultiFieldToken("acct-1", "2026-03-01", uid)
	assert.NotEmpty(t, token)
	assert.NotContains(t, token, "/", "tokens travel in query strings")

	fields, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"acct-1", "2026-03-01", uid}, fields)
}

func TestDecodeMultiFieldTokenError(t *testing.T) {
	_, err := DecodeMultiFieldToken("this is not base64!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	_, err = DecodeMultiFieldToken("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
