package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/invest_backend/models"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type verifyOtpRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func signUpHandler(c *gin.Context) {
	var input models.NewUser
	if !bindJSON(c, &input) {
		return
	}
	user, err := models.SignUp(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func loginHandler(c *gin.Context) {
	var input loginRequest
	if !bindJSON(c, &input) {
		return
	}
	challenge, err := models.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

func verifyOtpHandler(c *gin.Context) {
	var input verifyOtpRequest
	if !bindJSON(c, &input) {
		return
	}
	tokens, err := models.VerifyOtp(c.Request.Context(), input.Email, input.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func refreshTokenHandler(c *gin.Context) {
	var input refreshTokenRequest
	if !bindJSON(c, &input) {
		return
	}
	tokens, err := models.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func logoutHandler(c *gin.Context) {
	ok, err := models.Logout(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

func profileHandler(c *gin.Context) {
	user, err := models.GetProfile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
