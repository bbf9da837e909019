package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/logger"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/strapi"
)

// ErrorHandler обрабатывает ошибки, сложенные хэндлерами через c.Error.
// Внутренние ошибки маскируются, ошибки бэкенда и apperror отдаются со
// своим статусом и сообщением.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		status := http.StatusInternalServerError
		message := "внутренняя ошибка сервера"

		var appErr *apperror.AppError
		var apiErr *strapi.APIError
		switch {
		case errors.As(err, &appErr):
			status = appErr.HTTPStatus
			message = appErr.Message
		case errors.As(err, &apiErr):
			status = apiErr.Status
			message = apiErr.Message
		}

		c.JSON(status, gin.H{"ok": false, "error": message})
	}
}
