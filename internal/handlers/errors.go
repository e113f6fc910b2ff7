package handlers

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	apperrors "github.com/justsurfingit/jobly/internal/errors"
)

func statusFor(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrTypeBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrTypeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body and attaches err to the context so the
// request logger records it. Internal failures never leak their details.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := http.StatusText(status)
	if status != http.StatusInternalServerError {
		message = apperrors.Message(err, message)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{"message": message, "status": status},
	})
}

func badRequest(c *gin.Context, err error) {
	respondError(c, apperrors.BadRequest(err.Error(), err))
}

// checkQueryKeys rejects query strings carrying keys outside allowed.
func checkQueryKeys(c *gin.Context, allowed []string) error {
	for key := range c.Request.URL.Query() {
		if !slices.Contains(allowed, key) {
			return apperrors.BadRequest(fmt.Sprintf("Unknown filter: %s", key), nil)
		}
	}
	return nil
}
