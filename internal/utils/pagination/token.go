package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const fieldSeparator = "|"

// EncodeMultiFieldToken creates a token with any number of string fields
// This provides flexibility for different pagination strategies
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, fieldSeparator)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	if len(decodedBytes) == 0 {
		return nil, fmt.Errorf("invalid pagination token format (empty)")
	}

	return strings.Split(string(decodedBytes), fieldSeparator), nil
}
