package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studyhub/internal/app/controllers"
	"github.com/yigit/studyhub/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth      *controllers.AuthController
	Study     *controllers.StudyController
	Notice    *controllers.NoticeController
	Community *controllers.CommunityController
	Health    *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl *Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", ctrl.Health.Health)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	v1 := router.Group("/api/v1")
	v1.GET("/health", ctrl.Health.Health)

	jwt := authMiddleware.JWTAuth()

	// --- Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/security-question", ctrl.Auth.GetSecurityQuestion)
		auth.POST("/verify-security-answer", ctrl.Auth.VerifySecurityAnswer)
		auth.POST("/reset-password", ctrl.Auth.ResetPassword)

		auth.GET("/me", jwt, ctrl.Auth.Me)
		auth.PUT("/profile", jwt, ctrl.Auth.UpdateProfile)
	}

	// --- Study group routes ---
	studies := v1.Group("/studies")
	{
		studies.GET("", ctrl.Study.ListStudies)
		studies.GET("/:id", ctrl.Study.GetStudy)

		studiesProtected := studies.Group("", jwt)
		{
			studiesProtected.POST("", ctrl.Study.CreateStudy)
			studiesProtected.PUT("/:id", ctrl.Study.UpdateStudy)
			studiesProtected.DELETE("/:id", ctrl.Study.DeleteStudy)
			studiesProtected.POST("/:id/join", ctrl.Study.JoinStudy)
			studiesProtected.POST("/:id/leave", ctrl.Study.LeaveStudy)
		}
	}

	// --- Notice routes ---
	notices := v1.Group("/notices")
	{
		notices.GET("", ctrl.Notice.ListNotices)
		notices.GET("/:id", ctrl.Notice.GetNotice)

		// The services check the role again, this only rejects early
		noticesAdmin := notices.Group("", jwt, authMiddleware.AdminRequired())
		{
			noticesAdmin.POST("", ctrl.Notice.CreateNotice)
			noticesAdmin.PUT("/:id", ctrl.Notice.UpdateNotice)
			noticesAdmin.DELETE("/:id", ctrl.Notice.DeleteNotice)
		}
	}

	// --- Community routes ---
	community := v1.Group("/community")
	{
		posts := community.Group("/posts")
		posts.GET("", ctrl.Community.ListPosts)
		posts.GET("/:id", ctrl.Community.GetPost)
		posts.GET("/:id/comments", ctrl.Community.ListComments)

		postsProtected := posts.Group("", jwt)
		{
			postsProtected.POST("", ctrl.Community.CreatePost)
			postsProtected.PUT("/:id", ctrl.Community.UpdatePost)
			postsProtected.DELETE("/:id", ctrl.Community.DeletePost)
			postsProtected.POST("/:id/like", ctrl.Community.ToggleLike)
			postsProtected.POST("/:id/comments", ctrl.Community.AddComment)
		}

		community.DELETE("/comments/:id", jwt, ctrl.Community.DeleteComment)
	}
}
