package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/parsa-dv/messenger/internal/pkg/response"
	"github.com/parsa-dv/messenger/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 400, "All fields required")
		return
	}
	result, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	resp := gin.H{
		"message":           "Verification code sent to your email",
		"verificationToken": result.TokenID,
	}
	if result.DebugCode != "" {
		resp["debug_code"] = result.DebugCode
	}
	response.Success(c, resp)
}

type verifyEmailRequest struct {
	Code  string `json:"code"`
	Token string `json:"token"`
	// Attempts is the client's locally tracked counter. Display-only and
	// forgeable; the token store's own count is the only gate.
	Attempts int `json:"attempts"`
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 400, "Code and token required")
		return
	}
	if req.Attempts > 0 {
		logutil.GetLogger(c.Request.Context()).Debug("client-reported attempts ignored", zap.Int("attempts", req.Attempts))
	}
	user, session, err := h.auth.VerifyEmail(c.Request.Context(), req.Token, req.Code)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"message":  "Email verified successfully",
		"userId":   user.ID,
		"username": user.Username,
		"token":    session,
	})
}

type forgotPasswordRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 400, "Email or username required")
		return
	}
	result, err := h.auth.ForgotPassword(c.Request.Context(), req.EmailOrUsername)
	if err != nil {
		handleError(c, err)
		return
	}
	resp := gin.H{
		"message":     "Reset code sent to your email",
		"resetToken":  result.TokenID,
		"maskedEmail": result.MaskedEmail,
	}
	if result.DebugCode != "" {
		resp["debug_code"] = result.DebugCode
	}
	response.Success(c, resp)
}

type resetPasswordRequest struct {
	Code        string `json:"code"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
	Attempts    int    `json:"attempts"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 400, "All fields required")
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Code, req.NewPassword); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Password reset successfully"})
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, 400, "Username/Email and password required")
		return
	}
	user, session, err := h.auth.Login(c.Request.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"message":         "Login successful",
		"userId":          user.ID,
		"username":        user.Username,
		"profile_picture": user.ProfilePicture,
		"token":           session,
	})
}

// Logout exists for client symmetry. Sessions are bearer tokens, so the
// credential simply stops being sent; nothing is tracked server-side.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success(c, gin.H{"message": "Logged out"})
}
