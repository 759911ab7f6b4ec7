package shared

import (
	"strings"

	"github.com/tierledger/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextString 从上下文读取字符串值并统一处理错误响应。
func GetContextString(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return "", false
	}
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return "", false
	}
	return s, true
}
