package preview

import (
	"context"

	"github.com/yockii/notion_blog/pkg/blockrender"
)

// FallbackDescription 预览获取失败时的描述
const FallbackDescription = "Click to visit this external link"

// Preview 外部链接的预览信息
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
}

// Fetcher 链接预览获取接口
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Preview, error)
}

// Fallback 本地构造的兜底预览，标题为主机名
func Fallback(url string) *Preview {
	return &Preview{
		URL:         url,
		Title:       blockrender.Hostname(url),
		Description: FallbackDescription,
	}
}

// Bookmark 转换为书签卡片使用的预览数据
func (p *Preview) Bookmark() blockrender.BookmarkPreview {
	if p == nil {
		return blockrender.BookmarkPreview{}
	}
	return blockrender.BookmarkPreview{
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		SiteName:    p.SiteName,
	}
}
