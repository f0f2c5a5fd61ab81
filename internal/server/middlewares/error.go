package middlewares

import (
	"github.com/gin-gonic/gin"

	"eightball/variance/pkg/ginx"
	"eightball/variance/pkg/logger"
)

// Recovery 捕获 panic，返回统一 500 响应
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "[HTTP] panic recovered: %v", r)
				ginx.InternalError(c, "internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// ErrorHandler 统一错误处理中间件
// Handler 通过 c.Error 记录但尚未写响应的错误，统一返回 500
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		log.Errorf(c.Request.Context(), "[HTTP] request failed: %v", err.Err)
		if !c.Writer.Written() {
			ginx.InternalError(c, err.Error())
		}
	}
}
