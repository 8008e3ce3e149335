package sysapi

import "github.com/gofiber/fiber/v2"

// Handlers 已注册的管理接口处理器，由server统一挂载到 /sys_api/v1
var Handlers []Handler

// Handler 管理接口处理器，所有路由都必须挂上authMiddleware
type Handler interface {
	RegisterRoutes(router fiber.Router, authMiddleware fiber.Handler)
}

/*
管理接口（API Key鉴权）：
1、导入文章快照（元数据 + Notion块JSON）
2、更新、删除文章
3、按ID查询、按条件分页查询（含草稿）
*/
