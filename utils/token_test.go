package utils_test

import (
	"testing"

	"github.com/mmdatafocus/invest_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJwtRoundTrip(t *testing.T) {
	t.Setenv("API_SECRET", "test-secret")

	token, tokenId, err := utils.JwtGenerate(7, "owner@example.com", utils.TokenTypeAccess)
	require.NoError(t, err)
	require.NotEmpty(t, tokenId)

	claim, err := utils.ParseToken(token, utils.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, 7, claim.ID)
	assert.Equal(t, "owner@example.com", claim.Email)
	assert.Equal(t, tokenId, claim.Id)

	_, err = utils.ParseToken(token, utils.TokenTypeRefresh)
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)

	t.Setenv("API_SECRET", "another-secret")
	_, err = utils.ParseToken(token, utils.TokenTypeAccess)
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)

	_, err = utils.ParseToken("not-a-token", utils.TokenTypeAccess)
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)
}

func TestJwtRejectsMissingUser(t *testing.T) {
	token, _, err := utils.JwtGenerate(0, "", utils.TokenTypeAccess)
	require.NoError(t, err)
	_, err = utils.ParseToken(token, utils.TokenTypeAccess)
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)
}

func TestOtp(t *testing.T) {
	code, err := utils.GenerateOtp()
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9]{6}$`, code)

	assert.True(t, utils.OtpMatches(code, code))
	assert.False(t, utils.OtpMatches(code, code[:5]))
	assert.False(t, utils.OtpMatches("", ""))
}

func TestLifespansFromEnv(t *testing.T) {
	t.Setenv("OTP_MINUTE_LIFESPAN", "")
	assert.Equal(t, "5m0s", utils.OtpLifespan().String())

	t.Setenv("TOKEN_HOUR_LIFESPAN", "2")
	assert.Equal(t, "2h0m0s", utils.AccessTokenLifespan().String())

	t.Setenv("REFRESH_TOKEN_HOUR_LIFESPAN", "bad")
	assert.Equal(t, "336h0m0s", utils.RefreshTokenLifespan().String())
}
