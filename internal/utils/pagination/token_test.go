package pagination

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeLedgerToken(t *testing.T) {
	cursor := LedgerCursor{
		AccountID: "child-1",
		Order:     "desc",
		LastSK:    "TRANS#2024-05-01T12:00:00.000000Z#0190f1e2-aaaa-7bbb-8ccc-000000000001",
	}

	token := EncodeLedgerToken(cursor)
	assert.NotEmpty(t, token, "Token should not be empty")
	assert.NotContains(t, token, "+", "Token should be URL safe")
	assert.NotContains(t, token, "/", "Token should be URL safe")

	decoded, err := DecodeLedgerToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, cursor, decoded, "Cursor should match after decode")
}

func TestDecodeLedgerTokenError(t *testing.T) {
	_, err := DecodeLedgerToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	twoFields := base64.URLEncoding.EncodeToString([]byte("child-1|desc"))
	_, err = DecodeLedgerToken(twoFields)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	emptySK := base64.URLEncoding.EncodeToString([]byte("child-1|desc|"))
	_, err = DecodeLedgerToken(emptySK)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty field")
}

func TestMultiFieldToken(t *testing.T) {
	fields := []string{"a", "b", "c"}
	token := EncodeMultiFieldToken(fields...)

	decoded, err := DecodeMultiFieldToken(token)
	assert.NoError(t, err)
	assert.Equal(t, fields, decoded)
}
