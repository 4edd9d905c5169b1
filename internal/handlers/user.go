package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grimoire-app/grimoire-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	user, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_user_failed", err)
		return
	}
	if user == nil {
		RespondNotFound(c, "user")
		return
	}
	RespondOK(c, gin.H{"user": user})
}
