package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parsa-dv/messenger/internal/middleware"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Messages  *MessageHandler
	Users     *UserHandler
	Presence  *PresenceHandler
	Files     *FileHandler
	JWTSecret []byte
	// IssueWindow spaces out token-issuing calls per client; zero disables.
	IssueWindow time.Duration
}

func RegisterRoutes(router gin.IRouter, deps RouterDeps) {
	issueLimit := middleware.RateLimit(deps.IssueWindow)
	router.POST("/register", issueLimit, deps.Auth.Register)
	router.POST("/verify-email", deps.Auth.VerifyEmail)
	router.POST("/forgot-password", issueLimit, deps.Auth.ForgotPassword)
	router.POST("/reset-password", deps.Auth.ResetPassword)
	router.POST("/login", deps.Auth.Login)

	router.GET("/uploads/:key", deps.Files.Get)

	authGroup := router.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.POST("/logout", deps.Auth.Logout)
	authGroup.GET("/me", deps.Users.Me)
	authGroup.POST("/profile/update", deps.Users.UpdateProfile)
	authGroup.POST("/profile/picture", deps.Users.UploadPicture)
	authGroup.GET("/users", deps.Users.Contacts)
	authGroup.GET("/users/search", deps.Users.Search)
	authGroup.POST("/typing", deps.Presence.Typing)
	authGroup.POST("/send", deps.Messages.Send)
	authGroup.POST("/send/file", deps.Messages.SendFile)
	authGroup.GET("/messages/:userId", deps.Messages.Conversation)
	authGroup.POST("/messages/mark-read", deps.Messages.MarkRead)
}
