package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter sets up the Gin router
func NewRouter(handlers *AuthHandlers, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	auth := router.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.POST("/forgot-password", handlers.ForgotPassword)
		auth.POST("/confirm-forgot", handlers.ConfirmForgot)
		auth.POST("/confirm-otp", handlers.ConfirmOTP)
		auth.POST("/resend-otp", handlers.ResendOTP)
		auth.POST("/log-out", handlers.Logout)
		auth.GET("/sign-message", handlers.SignMessage)
		auth.POST("/verify", handlers.Verify)
		auth.GET("/check-me", RequireToken(), handlers.CheckMe)
	}

	router.GET("/user", RequireToken(), handlers.User)

	return router
}
