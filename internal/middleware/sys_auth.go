package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yockii/notion_blog/internal/constant"
	"github.com/yockii/notion_blog/internal/service"
	"github.com/yockii/notion_blog/pkg/logger"
)

// NewSysAuthMiddleware 管理接口认证，Authorization: Bearer <api_key> 或 X-API-Key 头。
// apiKey为空时拒绝所有请求
func NewSysAuthMiddleware(apiKey string) fiber.Handler {
	if apiKey == "" {
		logger.Warn("未配置security.api_key，管理接口不可用")
	}
	expected := []byte(apiKey)

	return func(c *fiber.Ctx) error {
		key := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if key == "" {
			key = c.Get("X-API-Key")
		}
		if key == "" || len(expected) == 0 || subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
			logger.Warn("管理接口认证失败", logger.F("ip", c.IP()), logger.F("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
		}
		return c.Next()
	}
}
