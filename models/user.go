package models

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/mmdatafocus/invest_backend/config"
	"github.com/mmdatafocus/invest_backend/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Email     string    `gorm:"size:100;not null;unique" json:"email"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Phone     *string   `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Email    string `json:"email" binding:"required,email,max=100"`
	Name     string `json:"name" binding:"required,max=100"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type OtpChallenge struct {
	Email     string `json:"email"`
	ExpiresIn int64  `json:"expires_in"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

/*
caches:
	Otp:$email
	OtpAttempts:$email (failed verifications)
	RefreshToken:$jti -> user id
	RefreshTokens:$userId (set of jti)
*/

// OtpSender delivers a login code to the user.
type OtpSender interface {
	SendOtp(ctx context.Context, user *User, code string) error
}

type logOtpSender struct{}

func (logOtpSender) SendOtp(ctx context.Context, user *User, code string) error {
	config.GetLogger().WithFields(logrus.Fields{
		"field":   "SendOtp",
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("login otp issued")
	return nil
}

var otpSender OtpSender = logOtpSender{}

// SetOtpSender replaces the OTP delivery channel; nil restores the log sender.
func SetOtpSender(sender OtpSender) {
	if sender == nil {
		sender = logOtpSender{}
	}
	otpSender = sender
}

// wrong codes allowed before the pending code is discarded
const maxOtpAttempts = 5

func otpKey(email string) string {
	return "Otp:" + email
}

func otpAttemptsKey(email string) string {
	return "OtpAttempts:" + email
}

func refreshTokenKey(tokenId string) string {
	return "RefreshToken:" + tokenId
}

func refreshTokenSetKey(userId int) string {
	return "RefreshTokens:" + fmt.Sprint(userId)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func SignUp(ctx context.Context, input *NewUser) (*User, error) {

	db := config.GetDB()
	email := normalizeEmail(input.Email)
	if !utils.IsValidEmail(email) {
		return nil, utils.NewInputError("invalid email address")
	}

	var phone *string
	if strings.TrimSpace(input.Phone) != "" {
		normalized, err := utils.NormalizePhoneNumber(input.Phone, utils.CountryCode)
		if err != nil {
			return nil, utils.NewInputError("invalid phone number")
		}
		phone = &normalized
	}

	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewDuplicateError("email")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Email:    email,
		Name:     html.EscapeString(strings.TrimSpace(input.Name)),
		Phone:    phone,
		Password: string(hashedPassword),
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, utils.NewDuplicateError("email")
		}
		return nil, err
	}
	return &user, nil
}

func findUserByEmail(ctx context.Context, email string) (*User, error) {
	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

// check credentials and send a one-time code
func Login(ctx context.Context, email string, password string) (*OtpChallenge, error) {

	invalidCredentials := fmt.Errorf("%w: invalid email or password", utils.ErrorUnauthorized)

	user, err := findUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, invalidCredentials
		}
		return nil, err
	}

	if err := utils.ComparePassword(user.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, invalidCredentials
		}
		return nil, err
	}
	if !*user.IsActive {
		return nil, fmt.Errorf("%w: user is disabled", utils.ErrorUnauthorized)
	}

	code, err := utils.GenerateOtp()
	if err != nil {
		return nil, err
	}
	lifespan := utils.OtpLifespan()
	if err := config.SetRedisValue(otpKey(user.Email), code, lifespan); err != nil {
		return nil, err
	}
	if err := config.RemoveRedisKey(otpAttemptsKey(user.Email)); err != nil {
		return nil, err
	}
	if err := otpSender.SendOtp(ctx, user, code); err != nil {
		return nil, err
	}

	return &OtpChallenge{
		Email:     user.Email,
		ExpiresIn: int64(lifespan.Seconds()),
	}, nil
}

// exchange a valid one-time code for a token pair
func VerifyOtp(ctx context.Context, email string, code string) (*TokenPair, error) {

	email = normalizeEmail(email)
	expected, exists, err := config.GetRedisValue(otpKey(email))
	if err != nil {
		return nil, err
	}
	invalidCode := fmt.Errorf("%w: invalid or expired code", utils.ErrorUnauthorized)
	if !exists {
		return nil, invalidCode
	}
	if !utils.OtpMatches(expected, code) {
		attempts, err := config.IncrRedisCounter(otpAttemptsKey(email), utils.OtpLifespan())
		if err != nil {
			return nil, err
		}
		if attempts >= maxOtpAttempts {
			if err := config.RemoveRedisKey(otpKey(email), otpAttemptsKey(email)); err != nil {
				return nil, err
			}
		}
		return nil, invalidCode
	}

	user, err := findUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.ErrorUnauthorized
		}
		return nil, err
	}
	if err := config.RemoveRedisKey(otpKey(email), otpAttemptsKey(email)); err != nil {
		return nil, err
	}

	return issueTokenPair(user)
}

func issueTokenPair(user *User) (*TokenPair, error) {
	accessToken, _, err := utils.JwtGenerate(user.ID, user.Email, utils.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshTokenId, err := utils.JwtGenerate(user.ID, user.Email, utils.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	// register refresh token id
	if err := config.SetRedisValue(refreshTokenKey(refreshTokenId), fmt.Sprint(user.ID), utils.RefreshTokenLifespan()); err != nil {
		return nil, err
	}
	if err := config.AddRedisSet(refreshTokenSetKey(user.ID), refreshTokenId); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(utils.AccessTokenLifespan().Seconds()),
	}, nil
}

// rotate a refresh token: the old one is revoked, a new pair is issued
func RefreshToken(ctx context.Context, token string) (*TokenPair, error) {

	claim, err := utils.ParseToken(token, utils.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	owner, exists, err := config.GetRedisValue(refreshTokenKey(claim.Id))
	if err != nil {
		return nil, err
	}
	if !exists || owner != fmt.Sprint(claim.ID) {
		return nil, fmt.Errorf("%w: refresh token revoked", utils.ErrorUnauthorized)
	}

	if err := config.RemoveRedisKey(refreshTokenKey(claim.Id)); err != nil {
		return nil, err
	}
	if err := config.RemoveRedisSetMember(refreshTokenSetKey(claim.ID), claim.Id); err != nil {
		return nil, err
	}

	var user User
	if err := config.GetDB().WithContext(ctx).First(&user, claim.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorUnauthorized
		}
		return nil, err
	}
	if !*user.IsActive {
		return nil, fmt.Errorf("%w: user is disabled", utils.ErrorUnauthorized)
	}

	return issueTokenPair(&user)
}

// revoke every refresh token of the current user
func Logout(ctx context.Context) (bool, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return false, err
	}

	tokenIds, err := config.GetRedisSetMembers(refreshTokenSetKey(userId))
	if err != nil {
		return false, err
	}
	keys := make([]string, 0, len(tokenIds)+1)
	for _, tokenId := range tokenIds {
		keys = append(keys, refreshTokenKey(tokenId))
	}
	keys = append(keys, refreshTokenSetKey(userId))
	if err := config.RemoveRedisKey(keys...); err != nil {
		return false, err
	}
	return true, nil
}

func GetProfile(ctx context.Context) (*User, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var result User
	if err := db.WithContext(ctx).First(&result, userId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}
