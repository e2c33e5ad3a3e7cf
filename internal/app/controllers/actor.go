package controllers

import (
	"github.com/gin-gonic/gin"
	authz "github.com/yigit/studyhub/internal/app/auth"
	"github.com/yigit/studyhub/internal/middleware"
)

// currentActor builds the acting user from the values JWTAuth stored on ctx
func currentActor(ctx *gin.Context) authz.Actor {
	userID, _ := middleware.CurrentUserID(ctx)
	return authz.Actor{UserID: userID, Role: middleware.CurrentRole(ctx)}
}
