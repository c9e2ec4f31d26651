package middleware

import (
	"net/http"

	apperrors "github.com/ak/sba/internal/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BodySizeLimit rejects declared oversize bodies up front and caps the
// rest with http.MaxBytesReader
func BodySizeLimit(maxSize int64, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxSize <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxSize {
			logger.Warn("Request body too large",
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("max_size", maxSize),
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, apperrors.NewErrorResponse(apperrors.PayloadTooLarge(maxSize)))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)

		c.Next()
	}
}
