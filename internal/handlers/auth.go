package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/collabcore-dev/collabcore/db"
	"github.com/collabcore-dev/collabcore/internal/auth"
	"github.com/collabcore-dev/collabcore/internal/models"
	"github.com/collabcore-dev/collabcore/internal/services"
	"github.com/collabcore-dev/collabcore/internal/types"
	"github.com/collabcore-dev/collabcore/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterUserRequest struct {
	Username string `json:"username" binding:"required,lowercase,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

var (
	Domain = os.Getenv("DOMAIN")
)

func toUserResponse(user models.User) types.UserResponse {
	return types.UserResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		IsEmailVerified: user.IsEmailVerified,
	}
}

// issueTokenPair mints both tokens and overwrites the stored refresh token,
// invalidating whichever refresh token was live before.
func issueTokenPair(userID uint) (string, string, error) {
	accessToken, err := auth.GenerateAccessToken(userID)

	if err != nil {
		return "", "", err
	}

	refreshToken, err := auth.GenerateRefreshToken(userID)

	if err != nil {
		return "", "", err
	}

	err = db.DB.Model(&models.User{}).Where("id = ?", userID).Update("refresh_token", refreshToken).Error

	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func setAuthCookies(ctx *gin.Context, accessToken, refreshToken string) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		Path:     "/",
		Domain:   Domain,
		MaxAge:   int(auth.AccessTokenTTL().Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "refreshToken",
		Value:    refreshToken,
		Path:     "/",
		Domain:   Domain,
		MaxAge:   int(auth.RefreshTokenTTL().Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearAuthCookies(ctx *gin.Context) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(ctx.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   Domain,
			MaxAge:   -1,
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteNoneMode,
		})
	}
}

func RegisterUser(ctx *gin.Context) {
	var body RegisterUserRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	body.Username = strings.TrimSpace(body.Username)

	var existingUser models.User

	err := db.DB.Where("username = ? OR email = ?", body.Username, body.Email).First(&existingUser).Error

	// The conflict message never says whether username or email collided.
	if err == nil {
		utils.RespondError(ctx, http.StatusConflict, "Username or email already exists")
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	unhashedToken, hashedToken, tokenExpiry, err := auth.GenerateTemporaryToken()

	if err != nil {
		log.Printf("Failed to generate verification token: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	newUser := models.User{
		Username:                body.Username,
		Email:                   body.Email,
		PasswordHash:            string(passwordHash),
		IsEmailVerified:         false,
		EmailVerificationToken:  hashedToken,
		EmailVerificationExpiry: &tokenExpiry,
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		// Two concurrent registrations can both pass the pre-check; the
		// unique indexes decide the loser.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondError(ctx, http.StatusConflict, "Username or email already exists")
			return
		}
		log.Printf("Failed to create user: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	// The user record stands even when mail delivery is down. Log only.
	verificationURL := os.Getenv("FRONTEND_URL") + "/verify-email/" + unhashedToken

	if err := services.SendVerificationEmail(newUser.Email, newUser.Username, verificationURL); err != nil {
		log.Printf("Failed to send verification email to %s: %v", newUser.Email, err)
	}

	utils.Respond(ctx, http.StatusCreated, gin.H{"user": toUserResponse(newUser)},
		"User registered successfully and verification mail has been sent")
}

func LoginUser(ctx *gin.Context) {
	var body LoginUserRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	body.Username = strings.TrimSpace(body.Username)

	if body.Email == "" && body.Username == "" {
		utils.RespondError(ctx, http.StatusBadRequest, "Email or username is required")
		return
	}

	query := db.DB

	switch {
	case body.Email != "" && body.Username != "":
		query = query.Where("email = ? OR username = ?", body.Email, body.Username)
	case body.Email != "":
		query = query.Where("email = ?", body.Email)
	default:
		query = query.Where("username = ?", body.Username)
	}

	var user models.User

	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, http.StatusBadRequest, "Invalid credentials")
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, "Invalid credentials")
		return
	}

	accessToken, refreshToken, err := issueTokenPair(user.ID)

	if err != nil {
		log.Printf("Failed to issue tokens: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	setAuthCookies(ctx, accessToken, refreshToken)

	utils.Respond(ctx, http.StatusOK, gin.H{
		"user":         toUserResponse(user),
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, "User logged in successfully")
}

func LogoutUser(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	err = db.DB.Model(&models.User{}).Where("id = ?", userID).Update("refresh_token", "").Error

	if err != nil {
		log.Printf("Failed to clear refresh token: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	clearAuthCookies(ctx)

	utils.Respond(ctx, http.StatusOK, nil, "User logged out successfully")
}

func CurrentUser(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(ctx, http.StatusNotFound, "User not found")
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"user": toUserResponse(user)}, "Current user fetched successfully")
}

func VerifyEmail(ctx *gin.Context) {
	verificationToken := ctx.Param("token")

	if verificationToken == "" {
		utils.RespondError(ctx, http.StatusBadRequest, "Verification token is required")
		return
	}

	hashedToken := auth.HashToken(verificationToken)

	var user models.User

	err := db.DB.Where("email_verification_token = ? AND email_verification_expiry > ?",
		hashedToken, time.Now()).First(&user).Error

	if err != nil {
		// A stale token is rejected but never consumed; it just expires.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, http.StatusNotFound, "Invalid or expired verification token")
			return
		}
		log.Printf("Database error when verifying email: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	updates := map[string]interface{}{
		"is_email_verified":         true,
		"email_verification_token":  "",
		"email_verification_expiry": nil,
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to mark email verified: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.Respond(ctx, http.StatusOK, gin.H{"isEmailVerified": true}, "Email verified successfully")
}

func ResendVerificationEmail(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(ctx, http.StatusNotFound, "User not found")
		return
	}

	if user.IsEmailVerified {
		utils.RespondError(ctx, http.StatusConflict, "Email is already verified")
		return
	}

	unhashedToken, hashedToken, tokenExpiry, err := auth.GenerateTemporaryToken()

	if err != nil {
		log.Printf("Failed to generate verification token: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	updates := map[string]interface{}{
		"email_verification_token":  hashedToken,
		"email_verification_expiry": tokenExpiry,
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to store verification token: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	verificationURL := os.Getenv("FRONTEND_URL") + "/verify-email/" + unhashedToken

	if err := services.SendVerificationEmail(user.Email, user.Username, verificationURL); err != nil {
		log.Printf("Failed to send verification email to %s: %v", user.Email, err)
	}

	utils.Respond(ctx, http.StatusOK, nil, "Verification email resent successfully")
}

func RefreshAccessToken(ctx *gin.Context) {
	incomingToken, _ := ctx.Cookie("refreshToken")

	if incomingToken == "" {
		var body RefreshTokenRequest

		if err := ctx.BindJSON(&body); err != nil || body.RefreshToken == "" {
			utils.RespondError(ctx, http.StatusUnauthorized, "Refresh token is required")
			return
		}

		incomingToken = body.RefreshToken
	}

	userID, err := auth.VerifyRefreshToken(incomingToken)

	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			log.Printf("Refresh rejected: token expired")
		} else {
			log.Printf("Refresh rejected: %v", err)
		}
		utils.RespondError(ctx, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(ctx, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	// Signature-valid but rotated-out tokens are a distinct condition from
	// expiry, but both are rejected the same way.
	if user.RefreshToken != incomingToken {
		log.Printf("Refresh rejected: token mismatch for user %d", user.ID)
		utils.RespondError(ctx, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	accessToken, refreshToken, err := issueTokenPair(user.ID)

	if err != nil {
		log.Printf("Failed to issue tokens: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	setAuthCookies(ctx, accessToken, refreshToken)

	utils.Respond(ctx, http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, "Access token refreshed successfully")
}

func ForgotPassword(ctx *gin.Context) {
	var body ForgotPasswordRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User

	if err := db.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, http.StatusNotFound, "User does not exist")
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	unhashedToken, hashedToken, tokenExpiry, err := auth.GenerateTemporaryToken()

	if err != nil {
		log.Printf("Failed to generate reset token: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	updates := map[string]interface{}{
		"forgot_password_token":  hashedToken,
		"forgot_password_expiry": tokenExpiry,
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to store reset token: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	resetURL := os.Getenv("FRONTEND_URL") + "/reset-password/" + unhashedToken

	if err := services.SendPasswordResetEmail(user.Email, user.Username, resetURL); err != nil {
		log.Printf("Failed to send password reset email to %s: %v", user.Email, err)
	}

	utils.Respond(ctx, http.StatusOK, nil, "Password reset mail sent successfully")
}

func ResetPassword(ctx *gin.Context) {
	resetToken := ctx.Param("token")

	var body ResetPasswordRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	hashedToken := auth.HashToken(resetToken)

	var user models.User

	err := db.DB.Where("forgot_password_token = ? AND forgot_password_expiry > ?",
		hashedToken, time.Now()).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, http.StatusBadRequest, "Invalid or expired token")
			return
		}
		log.Printf("Database error when resetting password: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	updates := map[string]interface{}{
		"password_hash":          string(passwordHash),
		"forgot_password_token":  "",
		"forgot_password_expiry": nil,
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to update password: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.Respond(ctx, http.StatusOK, nil, "Password reset successfully")
}

func ChangePassword(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var body ChangePasswordRequest

	if err := ctx.BindJSON(&body); err != nil {
		utils.RespondBindingError(ctx, err)
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(ctx, http.StatusNotFound, "User not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.CurrentPassword)); err != nil {
		utils.RespondError(ctx, http.StatusBadRequest, "Current password is incorrect")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	// The caller's live access token keeps working until it expires.
	err = db.DB.Model(&user).Update("password_hash", string(passwordHash)).Error

	if err != nil {
		log.Printf("Failed to update password: %v", err)
		utils.RespondError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.Respond(ctx, http.StatusOK, nil, "Password changed successfully")
}
