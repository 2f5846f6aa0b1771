package models_test

import (
	"context"
	"testing"

	"github.com/mmdatafocus/invest_backend/models"
	"github.com/mmdatafocus/invest_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingOtpSender struct {
	codes map[string]string
}

func (s *capturingOtpSender) SendOtp(ctx context.Context, user *models.User, code string) error {
	s.codes[user.Email] = code
	return nil
}

func captureOtp(t *testing.T) *capturingOtpSender {
	sender := &capturingOtpSender{codes: map[string]string{}}
	models.SetOtpSender(sender)
	t.Cleanup(func() { models.SetOtpSender(nil) })
	return sender
}

func TestLoginFlow(t *testing.T) {
	setupStore(t)
	sender := captureOtp(t)
	ctx := context.Background()

	user, err := models.SignUp(ctx, &models.NewUser{
		Email:    " Owner@Example.com ",
		Name:     "Owner",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", user.Email)

	_, err = models.SignUp(ctx, &models.NewUser{Email: "owner@example.com", Name: "Again", Password: "correct-horse"})
	assert.ErrorIs(t, err, utils.ErrorDuplicate)

	_, err = models.Login(ctx, "owner@example.com", "wrong-password")
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)
	_, err = models.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)

	challenge, err := models.Login(ctx, "owner@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", challenge.Email)
	code := sender.codes["owner@example.com"]
	require.Len(t, code, 6)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = models.VerifyOtp(ctx, "owner@example.com", wrong)
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)

	pair, err := models.VerifyOtp(ctx, "owner@example.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	// a code is single use
	_, err = models.VerifyOtp(ctx, "owner@example.com", code)
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)

	claim, err := utils.ParseToken(pair.AccessToken, utils.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claim.ID)

	// refresh tokens cannot be used as access tokens and vice versa
	_, err = utils.ParseToken(pair.RefreshToken, utils.TokenTypeAccess)
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)
	_, err = models.RefreshToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)

	rotated, err := models.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	_, err = models.RefreshToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)

	userCtx := userContext(user.ID)
	profile, err := models.GetProfile(userCtx)
	require.NoError(t, err)
	assert.Equal(t, "Owner", profile.Name)

	ok, err := models.Logout(userCtx)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = models.RefreshToken(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)
}

func TestSignUpValidatesPhone(t *testing.T) {
	setupStore(t)

	_, err := models.SignUp(context.Background(), &models.NewUser{
		Email:    "phone@example.com",
		Name:     "Phone",
		Phone:    "12",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, utils.ErrorInvalidInput)
}

func TestVerifyOtpDiscardsCodeAfterRepeatedFailures(t *testing.T) {
	setupStore(t)
	sender := captureOtp(t)
	ctx := context.Background()

	_, err := models.SignUp(ctx, &models.NewUser{Email: "guess@example.com", Name: "Guess", Password: "correct-horse"})
	require.NoError(t, err)
	_, err = models.Login(ctx, "guess@example.com", "correct-horse")
	require.NoError(t, err)
	code := sender.codes["guess@example.com"]

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	for i := 0; i < 5; i++ {
		_, err = models.VerifyOtp(ctx, "guess@example.com", wrong)
		assert.ErrorIs(t, err, utils.ErrorUnauthorized)
	}

	_, err = models.VerifyOtp(ctx, "guess@example.com", code)
	assert.ErrorIs(t, err, utils.ErrorUnauthorized)

	// a fresh login starts a new allowance
	_, err = models.Login(ctx, "guess@example.com", "correct-horse")
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err = models.VerifyOtp(ctx, "guess@example.com", wrong)
		assert.ErrorIs(t, err, utils.ErrorUnauthorized)
	}
	pair, err := models.VerifyOtp(ctx, "guess@example.com", sender.codes["guess@example.com"])
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}
