package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserDecodesRemoteRecord(t *testing.T) {
	payload := `{
		"id": 3,
		"name": "Clementine Bauch",
		"username": "Samantha",
		"email": "Nathan@yesenia.net",
		"address": {"city": "McKenziehaven"},
		"company": {"name": "Romaguera-Jacobson", "bs": "e-enable strategic applications"}
	}`

	var usr User
	require.NoError(t, json.Unmarshal([]byte(payload), &usr))

	assert.Equal(t, NumericID(3), usr.ID)
	assert.Equal(t, "Clementine Bauch", usr.Name)
	assert.Equal(t, "Nathan@yesenia.net", usr.Email)
	assert.Equal(t, "Romaguera-Jacobson", usr.Company.Name)
}

func TestUserIDKeepsNumbersAndStringsApart(t *testing.T) {
	var ids []UserID
	require.NoError(t, json.Unmarshal([]byte(`[1, "1", "abc", null]`), &ids))

	assert.Equal(t, NumericID(1), ids[0])
	assert.Equal(t, TextID("1"), ids[1])
	assert.NotEqual(t, ids[0], ids[1])
	assert.Equal(t, TextID("abc"), ids[2])
	assert.True(t, ids[3].IsZero())

	encoded, err := json.Marshal(ids[:3])
	require.NoError(t, err)
	assert.JSONEq(t, `[1, "1", "abc"]`, string(encoded))
}

func TestUserIDRejectsFractions(t *testing.T) {
	var id UserID
	err := json.Unmarshal([]byte(`1.5`), &id)
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestParseUserID(t *testing.T) {
	assert.Equal(t, NumericID(42), ParseUserID("42"))
	assert.Equal(t, TextID("u-42"), ParseUserID("u-42"))
	assert.Equal(t, "42", ParseUserID("42").String())
}

func TestNewClientID(t *testing.T) {
	now := time.UnixMilli(1718000000123)
	assert.Equal(t, NumericID(1718000000123), NewClientID(now))
}
