package sysapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/yockii/notion_blog/internal/constant"
	"github.com/yockii/notion_blog/internal/model"
	"github.com/yockii/notion_blog/internal/service"
	"github.com/yockii/notion_blog/pkg/logger"
)

type PostHandler struct {
	postService service.PostService
}

func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

func RegisterPostHandler(postService service.PostService) {
	Handlers = append(Handlers, NewPostHandler(postService))
}

func (h *PostHandler) RegisterRoutes(router fiber.Router, authMiddleware fiber.Handler) {
	r := router.Group("/post", authMiddleware)
	{
		r.Post("/new", h.Create)
		r.Post("/update", h.Update)
		r.Post("/delete", h.Delete)
		r.Get("/get", h.Get)
		r.Get("/list", h.List)
	}
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	record := new(model.Post)
	if err := c.BodyParser(record); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if err := h.postService.Create(c.UserContext(), record); err != nil {
		logger.Error("创建文章失败", logger.F("slug", record.Slug), logger.F("err", err))
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}
	logger.Info("创建文章", logger.F("id", record.ID), logger.F("slug", record.Slug))
	record.Content = nil
	return c.JSON(service.OK(record))
}

func (h *PostHandler) Update(c *fiber.Ctx) error {
	record := new(model.Post)
	if err := c.BodyParser(record); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if err := h.postService.Update(c.UserContext(), record); err != nil {
		logger.Error("更新文章失败", logger.F("id", record.ID), logger.F("err", err))
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}
	updated, err := h.postService.Get(c.UserContext(), record.ID)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}
	updated.Content = nil
	return c.JSON(service.OK(updated))
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	record := new(model.Post)
	if err := c.BodyParser(record); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if err := h.postService.Delete(c.UserContext(), record.ID); err != nil {
		logger.Error("删除文章失败", logger.F("id", record.ID), logger.F("err", err))
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}
	logger.Info("删除文章", logger.F("id", record.ID))
	return c.JSON(service.OK(nil))
}

// Get 包含块内容
func (h *PostHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	record, err := h.postService.Get(c.UserContext(), id)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}
	return c.JSON(service.OK(record))
}

// List 包含草稿，published=true/false 可筛选
func (h *PostHandler) List(c *fiber.Ctx) error {
	condition := &model.Post{
		Title: c.Query("title"),
	}
	if tag := c.Query("tag"); tag != "" {
		condition.Tags = []string{tag}
	}
	if p := c.Query("published"); p != "" {
		published, err := strconv.ParseBool(p)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
		}
		condition.Published = &published
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
