package appapi

import "github.com/gofiber/fiber/v2"

var Handlers []Handler

type Handler interface {
	RegisterRoutes(router fiber.Router)
}

/*
对外公开的接口：
1、渲染提交的Notion块JSON
2、按slug获取已发布文章的渲染结果
3、已发布文章列表
*/
