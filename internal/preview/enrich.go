package preview

import (
	"context"

	"github.com/beevik/etree"
	"github.com/sourcegraph/conc/pool"
	"github.com/yockii/notion_blog/pkg/blockrender"
	"github.com/yockii/notion_blog/pkg/logger"
)

// Enrich 为渲染树中的每个书签卡片获取预览并填充。
// 各书签独立获取，互不影响，失败时使用兜底预览，不重试
func Enrich(ctx context.Context, fetcher Fetcher, nodes []*etree.Element, concurrency int) {
	cards := blockrender.FindBookmarks(nodes)
	if len(cards) == 0 {
		return
	}
	if concurrency < 1 {
		concurrency = 1
	}

	previews := make([]*Preview, len(cards))
	p := pool.New().WithMaxGoroutines(concurrency)
	for i, card := range cards {
		target := blockrender.BookmarkURL(card)
		p.Go(func() {
			previews[i] = fetchOrFallback(ctx, fetcher, target)
		})
	}
	p.Wait()

	// 所有请求结束后再统一修改渲染树
	for i, card := range cards {
		blockrender.FillBookmark(card, previews[i].Bookmark())
	}
}

func fetchOrFallback(ctx context.Context, fetcher Fetcher, target string) *Preview {
	if fetcher == nil {
		return Fallback(target)
	}
	p, err := fetcher.Fetch(ctx, target)
	if err != nil || p == nil {
		logger.Debug("获取链接预览失败，使用兜底信息", logger.F("url", target), logger.F("error", err))
		return Fallback(target)
	}
	return p
}
