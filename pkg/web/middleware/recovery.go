package middleware

import (
	"net/http"
	"net/http/httputil"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/pigfarm/pkg/logger"
)

// Recovery 捕获 handler panic，记录请求并返回 500
func Recovery(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				dump, _ := httputil.DumpRequest(c.Request, false)
				l.ErrorContext(c.Request.Context(), "http recovery from panic",
					"panic", r,
					"request", string(dump),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
