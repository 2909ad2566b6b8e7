package util

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("user_1", "+15551234567", "secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.UserID)
	assert.Equal(t, "+15551234567", claims.Phone)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("user_1", "+15551234567", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken("user_1", "+15551234567", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewIDs(t *testing.T) {
	userID := NewUserID()
	bizID := NewBusinessID()
	dlgID := NewDialogID()

	assert.True(t, strings.HasPrefix(userID, "user_"))
	assert.True(t, strings.HasPrefix(bizID, "biz_"))
	assert.True(t, strings.HasPrefix(dlgID, "dlg_"))
	assert.NotContains(t, userID, "-")
	assert.NotEqual(t, NewUserID(), NewUserID())
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"coffee", "coffee-corner", "shop-24", "a"}
	for _, s := range valid {
		assert.True(t, IsValidSlug(s), "slug %q", s)
	}

	invalid := []string{"", "Coffee", "coffee corner", "shop_24", "café", "shop!"}
	for _, s := range invalid {
		assert.False(t, IsValidSlug(s), "slug %q", s)
	}
}

func TestHashAndCheckCode(t *testing.T) {
	hash, err := HashCode("1234")
	require.NoError(t, err)
	assert.NotEqual(t, "1234", hash)

	assert.True(t, CheckCode("1234", hash))
	assert.False(t, CheckCode("9999", hash))
}

func TestGenerateVerificationCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		assert.Len(t, code, 4)
	}
}
