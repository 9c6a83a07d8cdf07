package controllers

import (
	"net/http"
	"os"
	"time"

	"github.com/expendio/foh-app/services"
	"github.com/expendio/foh-app/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthController handles the two login surfaces: the shared staff floor
// passcode and the customer OTP flow.
type AuthController struct {
	OTP          *services.OTPService
	passcodeHash []byte
}

func NewAuthController(otp *services.OTPService) *AuthController {
	passcode := os.Getenv("STAFF_PASSCODE")
	if passcode == "" {
		// Development fallback, same as the old dashboard.
		passcode = "1234"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to hash staff passcode: %v", err)
	}
	return &AuthController{OTP: otp, passcodeHash: hash}
}

// StaffLogin exchanges the shared floor passcode for a staff session token.
func (ac *AuthController) StaffLogin(c *gin.Context) {
	var req struct {
		Passcode string `json:"passcode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword(ac.passcodeHash, []byte(req.Passcode)); err != nil {
		respondServiceError(c, services.ErrBadPasscode)
		return
	}

	token, err := utils.GenerateToken(0, utils.RoleStaff)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Println("Staff session opened")
	utils.RespondJSON(c, http.StatusOK, "Sesión iniciada", gin.H{
		"token": token,
	})
}

// StartOTP begins the customer self-check-in login.
func (ac *AuthController) StartOTP(c *gin.Context) {
	var req struct {
		Name           string `json:"name" binding:"required"`
		Email          string `json:"email" binding:"omitempty,email"`
		Phone          string `json:"phone"`
		BirthDate      string `json:"birth_date" binding:"required"` // YYYY-MM-DD
		MarketingOptIn bool   `json:"marketing_opt_in"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	requestID, err := ac.OTP.StartLogin(services.StartLoginRequest{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		BirthDate:      birthDate,
		MarketingOptIn: req.MarketingOptIn,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Código enviado", gin.H{
		"request_id": requestID,
	})
}

// VerifyOTP completes the customer login and returns a session token.
func (ac *AuthController) VerifyOTP(c *gin.Context) {
	var req struct {
		RequestID string `json:"request_id" binding:"required"`
		Code      string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	token, customer, err := ac.OTP.VerifyOTP(req.RequestID, req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Identidad verificada", gin.H{
		"token":    token,
		"customer": customer,
	})
}
