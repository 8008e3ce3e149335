package service

import (
	"context"
	"net/http"

	"github.com/yockii/notion_blog/internal/constant"
	"github.com/yockii/notion_blog/internal/model"
	"github.com/yockii/notion_blog/pkg/notion"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PostService interface {
	Create(ctx context.Context, record *model.Post) error
	Update(ctx context.Context, record *model.Post) error
	Delete(ctx context.Context, id uint64) error
	Get(ctx context.Context, id uint64) (*model.Post, error)
	// List 条件中Tags取第一个作为标签筛选，Published非nil时按发布状态筛选
	List(ctx context.Context, condition *model.Post, offset, limit int) ([]*model.Post, int64, error)
	// GetBySlug 只返回已发布的文章
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
	// ListTags 已发布文章的标签统计
	ListTags(ctx context.Context) ([]*model.TagCount, error)
}

// Document 一篇文章的元数据和解析后的块
type Document struct {
	Post   *model.Post
	Blocks []*notion.Block
}

// ContentSource 内容来源
type ContentSource interface {
	Document(ctx context.Context, slug string) (*Document, error)
}

// RenderedDocument 渲染结果，Post不含块内容
type RenderedDocument struct {
	Post *model.Post `json:"post"`
	HTML string      `json:"html"`
}

type RenderService interface {
	// RenderDocument 渲染已发布的文章
	RenderDocument(ctx context.Context, slug string) (*RenderedDocument, error)
	// RenderBlocks 渲染提交的块JSON
	RenderBlocks(ctx context.Context, data []byte) (string, error)
}

// /////////////////////////////
// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func OK(data interface{}) *Response {
	return NewResponse(data, nil)
}

func Error(err error) *Response {
	return NewResponse(nil, err)
}

// NewResponse 创建响应
func NewResponse(data interface{}, err error) *Response {
	if err == nil {
		return &Response{
			Code:    http.StatusOK,
			Message: "success",
			Data:    data,
		}
	}

	code := constant.GetErrorCode(err)
	return &Response{
		Code:    code,
		Message: err.Error(),
		Data:    data,
	}
}

// ListResponse 列表响应结构
type ListResponse struct {
	Total  int64       `json:"total"`
	Items  interface{} `json:"items"`
	Offset int         `json:"offset"`
	Limit  int         `json:"limit"`
}

// NewListResponse 创建列表响应
func NewListResponse(items interface{}, total int64, offset, limit int) *ListResponse {
	return &ListResponse{
		Total:  total,
		Items:  items,
		Offset: offset,
		Limit:  limit,
	}
}
