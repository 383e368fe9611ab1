package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/contentforge/moderation-backend/internal/pkg/errors"
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

// RespondWorkflowError maps the workflow error taxonomy onto HTTP statuses.
func RespondWorkflowError(c *gin.Context, err error) {
	var pe *apperrors.PublishError
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		RespondError(c, http.StatusBadRequest, apperrors.Code(err), err)
	case errors.Is(err, apperrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, apperrors.Code(err), err)
	case errors.Is(err, apperrors.ErrInvalidTransition), errors.Is(err, apperrors.ErrConflict):
		RespondError(c, http.StatusConflict, apperrors.Code(err), err)
	case errors.As(err, &pe):
		status := http.StatusBadGateway
		if !pe.Retryable {
			status = http.StatusUnprocessableEntity
		}
		RespondError(c, status, apperrors.Code(err), err)
	default:
		RespondError(c, http.StatusInternalServerError, apperrors.Code(err), err)
	}
}
