package appapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yockii/notion_blog/internal/constant"
	"github.com/yockii/notion_blog/internal/model"
	"github.com/yockii/notion_blog/internal/service"
	"github.com/yockii/notion_blog/pkg/logger"
)

type PostHandler struct {
	postService   service.PostService
	renderService service.RenderService
}

func NewPostHandler(postService service.PostService, renderService service.RenderService) *PostHandler {
	return &PostHandler{
		postService:   postService,
		renderService: renderService,
	}
}

func RegisterPostHandler(postService service.PostService, renderService service.RenderService) {
	Handlers = append(Handlers, NewPostHandler(postService, renderService))
}

func (h *PostHandler) RegisterRoutes(router fiber.Router) {
	r := router.Group("/post")
	{
		r.Get("/list", h.List)
		r.Get("/tags", h.Tags)
		r.Get("/:slug", h.Get)
	}
}

// Get 已发布文章的元数据和渲染后的HTML
func (h *PostHandler) Get(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	doc, err := h.renderService.RenderDocument(c.UserContext(), slug)
	if err != nil {
		if code := constant.GetErrorCode(err); code >= fiber.StatusInternalServerError {
			logger.Error("渲染文章失败", logger.F("slug", slug), logger.F("err", err))
		}
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}
	if c.Query("format") == "html" {
		c.Type("html", "utf-8")
		return c.SendString(doc.HTML)
	}
	return c.JSON(service.OK(doc))
}

// List 已发布文章列表，可按tag筛选
func (h *PostHandler) List(c *fiber.Ctx) error {
	published := true
	condition := &model.Post{Published: &published}
	if tag := c.Query("tag"); tag != "" {
		condition.Tags = []string{tag}
	}
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", service.DefaultPageSize)
	if limit > service.MaxPageSize {
		limit = service.MaxPageSize
	}

	list, total, err := h.postService.List(c.UserContext(), condition, offset, limit)
	if err != nil {
		logger.Error("获取文章列表失败", logger.F("err", err))
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}
	return c.JSON(service.OK(service.NewListResponse(list, total, offset, limit)))
}

// Tags 已发布文章的标签及数量，按数量降序
func (h *PostHandler) Tags(c *fiber.Ctx) error {
	tags, err := h.postService.ListTags(c.UserContext())
	if err != nil {
		logger.Error("获取标签失败", logger.F("err", err))
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}
	return c.JSON(service.OK(tags))
}
