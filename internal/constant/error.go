package constant

import (
	"errors"
	"net/http"

	"github.com/yockii/notion_blog/pkg/notion"
)

// 自定义错误
var (
	// 通用错误
	ErrInternalError    = errors.New("内部错误")
	ErrInvalidParams    = errors.New("参数错误")
	ErrUnauthorized     = errors.New("未授权")
	ErrDatabaseError    = errors.New("数据库错误")
	ErrRecordDuplicate  = errors.New("记录重复")
	ErrRecordNotFound   = errors.New("记录不存在")
	ErrRecordIDEmpty    = errors.New("ID不能为空")
	ErrSerializeError   = errors.New("序列化错误")
	ErrDeserializeError = errors.New("反序列化错误")
	ErrCacheError       = errors.New("缓存错误")
	ErrTooManyRequests  = errors.New("请求过于频繁")

	// 内容相关错误
	ErrInvalidDocument    = notion.ErrInvalidDocument
	ErrPreviewUnavailable = errors.New("链接预览不可用")
)

// GetErrorCode 获取错误对应的HTTP状态码，支持被包装的错误
func GetErrorCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidParams),
		errors.Is(err, ErrRecordDuplicate),
		errors.Is(err, ErrRecordIDEmpty),
		errors.Is(err, ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrPreviewUnavailable):
		return http.StatusBadGateway
	default:
		// ErrInternalError、ErrDatabaseError、ErrCacheError 及未知错误
		return http.StatusInternalServerError
	}
}
