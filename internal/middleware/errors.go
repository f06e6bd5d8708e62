package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/handlers/dto"
	"go.uber.org/zap"
)

// ErrorHandler переводит последнюю ошибку запроса в конверт {success:false, ...}.
// Неизвестные ошибки отдаются как 500 без подробностей и пишутся в лог.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := http.StatusInternalServerError
		message := "Internal server error"

		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
			message = "Request timed out"
		} else if appErr, ok := apperror.As(err); ok {
			status = appErr.Status
			message = appErr.Message
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}

		c.JSON(status, dto.Fail(status, message))
	}
}

// Recovery отвечает 500 в общем конверте вместо обрыва соединения
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("panic recovered",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Fail(http.StatusInternalServerError, "Internal server error"))
	})
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.Fail(http.StatusNotFound, "Route not found"))
}
