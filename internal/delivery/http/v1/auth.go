package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bharatnilam/my-laravel-api-2/internal/services"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abortBadRequest(c)
		return
	}

	result, err := h.auth.Login(c, services.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.As(err, &vErr):
			abortValidation(c, vErr.Fields)
		case errors.Is(err, services.ErrInvalidCredentials):
			abortInvalidCredentials(c)
		default:
			abortInternal(c)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    newUserResponse(result.User),
		"token":   result.Token,
	})
}
