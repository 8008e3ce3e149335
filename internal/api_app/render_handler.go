package appapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yockii/notion_blog/internal/constant"
	"github.com/yockii/notion_blog/internal/service"
	"github.com/yockii/notion_blog/pkg/logger"
)

type RenderHandler struct {
	renderService service.RenderService
}

func NewRenderHandler(renderService service.RenderService) *RenderHandler {
	return &RenderHandler{renderService: renderService}
}

func RegisterRenderHandler(renderService service.RenderService) {
	Handlers = append(Handlers, NewRenderHandler(renderService))
}

func (h *RenderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/render", h.Render)
}

// Render 请求体为块数组或Notion列表响应，format=html时直接返回HTML
func (h *RenderHandler) Render(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	html, err := h.renderService.RenderBlocks(c.UserContext(), body)
	if err != nil {
		logger.Warn("渲染块失败", logger.F("err", err))
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}
	if c.Query("format") == "html" {
		c.Type("html", "utf-8")
		return c.SendString(html)
	}
	return c.JSON(service.OK(fiber.Map{"html": html}))
}
