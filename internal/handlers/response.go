package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grimoire-app/grimoire-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNotFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, ErrorEnvelope{
		Error: APIError{
			Message: what + " not found",
			Code:    "not_found",
		},
	})
}

// RespondServiceError maps the service error taxonomy onto HTTP
// statuses: missing fields and bad shapes to 400, missing referenced
// records to 404, everything else to 500.
func RespondServiceError(c *gin.Context, code string, err error) {
	var vErr *services.ValidationError
	var tErr *services.TypeError
	switch {
	case errors.As(err, &vErr):
		RespondError(c, http.StatusBadRequest, "validation_failed", err)
	case errors.As(err, &tErr):
		RespondError(c, http.StatusBadRequest, "type_mismatch", err)
	case errors.Is(err, services.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	default:
		RespondError(c, http.StatusInternalServerError, code, err)
	}
}
