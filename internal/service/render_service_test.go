package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yockii/notion_blog/internal/constant"
	"github.com/yockii/notion_blog/internal/model"
	"github.com/yockii/notion_blog/internal/preview"
	"github.com/yockii/notion_blog/pkg/blockrender"
)

type stubSource struct {
	doc *Document
	err error
}

func (s stubSource) Document(context.Context, string) (*Document, error) {
	return s.doc, s.err
}

type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, url string) (*preview.Preview, error) {
	return &preview.Preview{URL: url, Title: "Fetched title"}, nil
}

func TestRenderService_RenderBlocks(t *testing.T) {
	s := NewRenderService(nil, blockrender.New(), stubFetcher{}, 2)

	html, err := s.RenderBlocks(context.Background(), []byte(`{"object":"list","results":[
		{"type":"heading_1","heading_1":{"rich_text":[{"plain_text":"Title"}]}},
		{"type":"paragraph","paragraph":{"rich_text":[]}},
		{"type":"bookmark","bookmark":{"url":"https://go.dev"}}
	]}`))
	require.NoError(t, err)
	assert.Contains(t, html, `<h1 class="notion-heading_1"><span>Title</span></h1>`)
	assert.Contains(t, html, "Fetched title")
	assert.NotContains(t, html, "notion-paragraph")

	_, err = s.RenderBlocks(context.Background(), []byte(`not json`))
	assert.ErrorIs(t, err, constant.ErrInvalidDocument)
}

func TestRenderService_EmptyDocument(t *testing.T) {
	s := NewRenderService(nil, blockrender.New(), nil, 1)
	html, err := s.RenderBlocks(context.Background(), []byte(`[]`))
	require.NoError(t, err)
	assert.Contains(t, html, blockrender.EmptyDocumentText)
}

func TestRenderService_RenderDocument(t *testing.T) {
	post := &model.Post{Slug: "s", Title: "S"}
	source := stubSource{doc: &Document{Post: post}}
	s := NewRenderService(source, blockrender.New(), nil, 1)

	out, err := s.RenderDocument(context.Background(), "s")
	require.NoError(t, err)
	assert.Same(t, post, out.Post)
	assert.Contains(t, out.HTML, blockrender.EmptyDocumentText)

	missing := NewRenderService(stubSource{err: constant.ErrRecordNotFound}, blockrender.New(), nil, 1)
	_, err = missing.RenderDocument(context.Background(), "nope")
	assert.ErrorIs(t, err, constant.ErrRecordNotFound)
}

func TestRenderService_WithPostStore(t *testing.T) {
	posts := NewPostService(setupDB(t))
	ctx := context.Background()
	require.NoError(t, posts.Create(ctx, &model.Post{
		Slug:      "hello",
		Title:     "Hello",
		Published: boolPtr(true),
		Content:   model.RawJSON(sampleContent),
	}))

	out, err := NewRenderService(posts, blockrender.New(), nil, 1).RenderDocument(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, `<p class="notion-paragraph"><span>Hello</span></p>`, out.HTML)
}
