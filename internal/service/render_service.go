package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/beevik/etree"
	"github.com/yockii/notion_blog/internal/constant"
	"github.com/yockii/notion_blog/internal/preview"
	"github.com/yockii/notion_blog/pkg/blockrender"
	"github.com/yockii/notion_blog/pkg/logger"
	"github.com/yockii/notion_blog/pkg/notion"
)

type renderService struct {
	source      ContentSource
	renderer    *blockrender.Renderer
	fetcher     preview.Fetcher
	concurrency int
}

// NewRenderService fetcher为nil时书签只使用兜底预览
func NewRenderService(source ContentSource, renderer *blockrender.Renderer, fetcher preview.Fetcher, concurrency int) RenderService {
	return &renderService{
		source:      source,
		renderer:    renderer,
		fetcher:     fetcher,
		concurrency: concurrency,
	}
}

func (s *renderService) RenderDocument(ctx context.Context, slug string) (*RenderedDocument, error) {
	doc, err := s.source.Document(ctx, slug)
	if err != nil {
		return nil, err
	}
	html, err := s.render(ctx, doc.Blocks)
	if err != nil {
		return nil, err
	}
	return &RenderedDocument{Post: doc.Post, HTML: html}, nil
}

func (s *renderService) RenderBlocks(ctx context.Context, data []byte) (string, error) {
	blocks, err := notion.DecodeBlocks(data)
	if err != nil {
		return "", err
	}
	return s.render(ctx, blocks)
}

// render 渲染、补全书签预览、序列化
func (s *renderService) render(ctx context.Context, blocks []*notion.Block) (string, error) {
	nodes := s.renderer.RenderDocument(blocks)
	preview.Enrich(ctx, s.fetcher, nodes, s.concurrency)
	return serialize(nodes)
}

func serialize(nodes []*etree.Element) (string, error) {
	var buf bytes.Buffer
	if err := blockrender.WriteHTML(&buf, nodes); err != nil {
		logger.Error("序列化HTML失败", logger.F("error", err))
		return "", fmt.Errorf("%w: %v", constant.ErrSerializeError, err)
	}
	return buf.String(), nil
}
