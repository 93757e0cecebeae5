package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const separator = "|"

// EncodeMultiFieldToken creates a token with any number of string fields.
// Tokens travel in query strings, so the URL-safe alphabet is used.
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, separator)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields.
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}

	tokenStr := string(decodedBytes)
	parts := strings.Split(tokenStr, separator)
	return parts, nil
}

// LedgerCursor is the position after which a ledger listing resumes.
type LedgerCursor struct {
	AccountID string
	Order     string
	LastSK    string
}

// EncodeLedgerToken creates an opaque continuation token from a cursor.
func EncodeLedgerToken(c LedgerCursor) string {
	return EncodeMultiFieldToken(c.AccountID, c.Order, c.LastSK)
}

// DecodeLedgerToken parses a continuation token back into a cursor.
func DecodeLedgerToken(token string) (LedgerCursor, error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return LedgerCursor{}, err
	}
	if len(parts) != 3 {
		return LedgerCursor{}, fmt.Errorf("invalid pagination token format (split)")
	}
	if parts[0] == "" || parts[2] == "" {
		return LedgerCursor{}, fmt.Errorf("invalid pagination token format (empty field)")
	}
	return LedgerCursor{AccountID: parts[0], Order: parts[1], LastSK: parts[2]}, nil
}
