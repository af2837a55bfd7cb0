package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"github.com/ArowuTest/masterstudent-moderation/internal/services"
	"github.com/gin-gonic/gin"
)

// actorFrom returns the moderator email placed in the context by JWTAuthMiddleware.
func actorFrom(c *gin.Context) string {
	if email, ok := c.Get("userEmail"); ok {
		if s, ok := email.(string); ok {
			return s
		}
	}
	return ""
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repositories.ErrNoteNotFound), errors.Is(err, repositories.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, repositories.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, repositories.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}
