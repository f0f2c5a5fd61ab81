package middlewares

import "github.com/gin-gonic/gin"

const (
	// HeaderActorID 触发分析的用户
	HeaderActorID = "X-Actor-ID"

	actorIDKey = "actor_id"
)

// ActorID 读取请求头中的用户 ID
func ActorID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actorID := c.GetHeader(HeaderActorID); actorID != "" {
			c.Set(actorIDKey, actorID)
		}
		c.Next()
	}
}

// GetActorID 返回当前请求的用户 ID，未提供时为空
func GetActorID(c *gin.Context) string {
	return c.GetString(actorIDKey)
}
