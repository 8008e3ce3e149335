package blockrender

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yockii/notion_blog/pkg/notion"
)

func text(s string) []notion.RichText {
	return []notion.RichText{notion.NewText(s)}
}

func paragraph(s string) *notion.Block {
	return &notion.Block{Type: notion.TypeParagraph, Paragraph: &notion.TextPayload{RichText: text(s)}}
}

func bullet(s string, children ...*notion.Block) *notion.Block {
	return &notion.Block{
		Type:             notion.TypeBulletedListItem,
		HasChildren:      len(children) > 0,
		BulletedListItem: &notion.TextPayload{RichText: text(s)},
		Children:         children,
	}
}

func decodeOne(t *testing.T, js string) *notion.Block {
	t.Helper()
	blocks, err := notion.DecodeBlocks([]byte("[" + js + "]"))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	return blocks[0]
}

func TestFormatRichText_Empty(t *testing.T) {
	assert.Empty(t, FormatRichText(nil))
	assert.Empty(t, FormatRichText([]notion.RichText{}))
}

func TestFormatRichText_OneNodePerRun(t *testing.T) {
	runs := []notion.RichText{
		notion.NewText("a"),
		{PlainText: "b", Annotations: notion.Annotations{Bold: true}},
		{PlainText: "c", Link: &notion.Link{URL: "https://c.example"}},
	}
	inlines := FormatRichText(runs)
	require.Len(t, inlines, len(runs))
	for i, in := range inlines {
		assert.Equal(t, []string{"0", "1", "2"}[i], in.Key)
		assert.Equal(t, "span", in.Node.Tag)
	}
	assert.Equal(t, "a", inlines[0].Node.Text())
}

func TestFormatRichText_Nesting(t *testing.T) {
	run := notion.RichText{
		PlainText: "x",
		Annotations: notion.Annotations{
			Bold: true, Italic: true, Strikethrough: true, Underline: true, Code: true,
		},
	}
	node := FormatRichText([]notion.RichText{run})[0].Node

	// 由外到内：span > code > u > del > em > strong > 文本
	path := []string{"code", "u", "del", "em", "strong"}
	cur := node
	for _, tag := range path {
		children := cur.ChildElements()
		require.Len(t, children, 1, "under <%s>", cur.Tag)
		cur = children[0]
		assert.Equal(t, tag, cur.Tag)
	}
	assert.Equal(t, "x", cur.Text())
	assert.Empty(t, cur.ChildElements())
}

func TestFormatRichText_BoldItalic(t *testing.T) {
	run := notion.RichText{PlainText: "x", Annotations: notion.Annotations{Bold: true, Italic: true}}
	out := HTML(FormatRichText([]notion.RichText{run})[0].Node)
	assert.Equal(t, "<span><em><strong>x</strong></em></span>", out)
}

func TestFormatRichText_Link(t *testing.T) {
	run := notion.RichText{
		PlainText:   "go",
		Annotations: notion.Annotations{Bold: true},
		Link:        &notion.Link{URL: "https://go.dev"},
	}
	node := FormatRichText([]notion.RichText{run})[0].Node
	a := node.SelectElement("a")
	require.NotNil(t, a)
	assert.Equal(t, "https://go.dev", a.SelectAttrValue("href", ""))
	assert.Equal(t, "_blank", a.SelectAttrValue("target", ""))
	assert.Equal(t, "noopener noreferrer", a.SelectAttrValue("rel", ""))
	assert.NotNil(t, a.SelectElement("strong"), "link wraps the annotated node")
}

func TestFormatRichText_Deterministic(t *testing.T) {
	runs := []notion.RichText{{PlainText: "x", Annotations: notion.Annotations{Underline: true}}}
	first := HTML(FormatRichText(runs)[0].Node)
	second := HTML(FormatRichText(runs)[0].Node)
	assert.Equal(t, first, second)
}

func TestRender_TextBlocksDropWhenEmpty(t *testing.T) {
	r := New()
	for _, typ := range []string{notion.TypeParagraph, notion.TypeHeading1, notion.TypeQuote} {
		b := decodeOne(t, `{"type":"`+typ+`","`+typ+`":{"rich_text":[]}}`)
		assert.Nil(t, r.Render(b), typ)
	}
	assert.Nil(t, r.Render(&notion.Block{Type: notion.TypeParagraph}), "missing payload")
	assert.Nil(t, r.Render(nil))
}

func TestRender_Headings(t *testing.T) {
	r := New()
	for typ, tag := range map[string]string{
		notion.TypeHeading1: "h1",
		notion.TypeHeading2: "h2",
		notion.TypeHeading3: "h3",
	} {
		b := decodeOne(t, `{"type":"`+typ+`","`+typ+`":{"rich_text":[{"plain_text":"Title"}]}}`)
		el := r.Render(b)
		require.NotNil(t, el)
		assert.Equal(t, tag, el.Tag)
		assert.Equal(t, "Title", el.SelectElement("span").Text())
	}
}

func TestRender_ToggleableHeading(t *testing.T) {
	b := decodeOne(t, `{"type":"heading_2","has_children":true,
		"heading_2":{"rich_text":[{"plain_text":"More"}],"is_toggleable":true},
		"children":[{"type":"paragraph","paragraph":{"rich_text":[{"plain_text":"hidden"}]}}]}`)
	el := New().Render(b)
	require.NotNil(t, el)
	assert.Equal(t, "details", el.Tag)
	assert.NotNil(t, el.FindElement("./summary/h2"))
	assert.NotNil(t, el.FindElement(".//p"))
}

func TestRender_NestedBulletedList(t *testing.T) {
	b := bullet("outer", bullet("first"), bullet("second"))
	el := New().Render(b)
	require.NotNil(t, el)

	assert.Equal(t, "ul", el.Tag)
	li := el.SelectElement("li")
	require.NotNil(t, li)
	assert.Equal(t, "outer", li.SelectElement("span").Text())

	nested := li.SelectElement("ul")
	require.NotNil(t, nested)
	items := nested.SelectElements("li")
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].SelectElement("span").Text())
	assert.Equal(t, "second", items[1].SelectElement("span").Text())
}

func TestRender_ListItemNeverNil(t *testing.T) {
	el := New().Render(&notion.Block{Type: notion.TypeNumberedListItem})
	require.NotNil(t, el)
	assert.Equal(t, "ol", el.Tag)
	assert.NotNil(t, el.SelectElement("li"))
}

func TestRender_ListItemWithOtherChild(t *testing.T) {
	el := New().Render(bullet("outer", paragraph("note")))
	require.NotNil(t, el)
	wrapper := el.FindElement("./li/ul/li")
	require.NotNil(t, wrapper)
	assert.NotNil(t, wrapper.SelectElement("p"))
}

func TestRender_ToDo(t *testing.T) {
	r := New()

	done := r.Render(decodeOne(t, `{"type":"to_do","to_do":{"rich_text":[{"plain_text":"ship"}],"checked":true}}`))
	require.NotNil(t, done)
	box := done.SelectElement("input")
	require.NotNil(t, box)
	assert.NotNil(t, box.SelectAttr("checked"))
	assert.NotNil(t, box.SelectAttr("disabled"))
	assert.NotNil(t, done.FindElement(".//s"), "checked text is struck through")

	open := r.Render(&notion.Block{Type: notion.TypeToDo})
	require.NotNil(t, open)
	assert.Nil(t, open.SelectElement("input").SelectAttr("checked"))
	assert.Nil(t, open.FindElement(".//s"))
}

func TestRender_Callout(t *testing.T) {
	r := New()

	def := r.Render(decodeOne(t, `{"type":"callout","callout":{"rich_text":[{"plain_text":"hi"}]}}`))
	require.NotNil(t, def)
	assert.Equal(t, DefaultCalloutIcon, def.SelectElement("span").Text())

	emoji := r.Render(decodeOne(t, `{"type":"callout","callout":{"rich_text":[],"icon":{"type":"emoji","emoji":"⚠️"}}}`))
	require.NotNil(t, emoji)
	assert.Equal(t, "⚠️", emoji.SelectElement("span").Text())

	img := r.Render(decodeOne(t, `{"type":"callout","callout":{"rich_text":[],"icon":{"type":"external","external":{"url":"https://x/i.png"}}}}`))
	require.NotNil(t, img)
	assert.Equal(t, "https://x/i.png", img.FindElement(".//img").SelectAttrValue("src", ""))
}

func TestRender_Code(t *testing.T) {
	r := New()

	goCode := r.Render(decodeOne(t, `{"type":"code","code":{"language":"go","rich_text":[{"plain_text":"package "},{"plain_text":"main"}]}}`))
	require.NotNil(t, goCode)
	label := goCode.SelectElement("div")
	require.NotNil(t, label)
	assert.Equal(t, "go", label.Text())
	assert.Equal(t, "package main", goCode.FindElement("./pre/code").Text())

	plain := r.Render(decodeOne(t, `{"type":"code","code":{"language":"text","rich_text":[{"plain_text":"x"}],"caption":[{"plain_text":"cap"}]}}`))
	require.NotNil(t, plain)
	assert.Nil(t, plain.FindElement("./div[@class='notion-code-language']"))
	assert.NotNil(t, plain.FindElement("./div[@class='notion-code-caption']"))

	assert.NotNil(t, r.Render(&notion.Block{Type: notion.TypeCode}), "code never drops")
}

func TestRender_Image(t *testing.T) {
	r := New()

	el := r.Render(decodeOne(t, `{"type":"image","image":{"type":"external","external":{"url":"https://x/a.png"},"caption":[{"plain_text":"A cat"}]}}`))
	require.NotNil(t, el)
	img := el.SelectElement("img")
	assert.Equal(t, "https://x/a.png", img.SelectAttrValue("src", ""))
	assert.Equal(t, "A cat", img.SelectAttrValue("alt", ""))
	assert.NotNil(t, el.SelectElement("figcaption"))

	bare := r.Render(decodeOne(t, `{"type":"image","image":{"type":"file","file":{"url":"https://s3/a.png"}}}`))
	require.NotNil(t, bare)
	assert.Equal(t, DefaultImageAlt, bare.SelectElement("img").SelectAttrValue("alt", ""))
	assert.Nil(t, bare.SelectElement("figcaption"))

	assert.Nil(t, r.Render(decodeOne(t, `{"type":"image","image":{"type":"external"}}`)))
	assert.Nil(t, r.Render(&notion.Block{Type: notion.TypeImage}))
}

func video(url string) *notion.Block {
	return &notion.Block{
		Type:  notion.TypeVideo,
		Video: &notion.MediaPayload{Type: notion.SourceExternal, External: &notion.FileRef{URL: url}},
	}
}

func TestRender_Video(t *testing.T) {
	r := New()

	embed := r.Render(video("https://youtu.be/abc123"))
	require.NotNil(t, embed)
	iframe := embed.FindElement(".//iframe")
	require.NotNil(t, iframe)
	assert.Equal(t, "https://www.youtube.com/embed/abc123", iframe.SelectAttrValue("src", ""))

	fallback := r.Render(video("https://youtu.be/"))
	require.NotNil(t, fallback)
	assert.Nil(t, fallback.FindElement(".//iframe"))
	v := fallback.FindElement(".//video")
	require.NotNil(t, v)
	assert.Equal(t, "https://youtu.be/", v.SelectAttrValue("src", ""))
	assert.NotNil(t, v.SelectAttr("controls"))

	native := r.Render(video("https://cdn.example.com/clip.mp4"))
	require.NotNil(t, native)
	assert.NotNil(t, native.FindElement(".//video"))

	assert.Nil(t, r.Render(&notion.Block{Type: notion.TypeVideo}))
}

func TestYouTubeID(t *testing.T) {
	tests := []struct {
		url  string
		id   string
		want bool
	}{
		{"https://youtu.be/abc123", "abc123", true},
		{"https://youtu.be/abc123?t=42", "abc123", true},
		{"https://www.youtube.com/watch?v=xyz&list=PL1", "xyz", true},
		{"https://m.youtube.com/watch?v=mob", "mob", true},
		{"https://www.youtube.com/embed/emb", "emb", true},
		{"https://youtu.be/", "", false},
		{"https://www.youtube.com/watch", "", false},
		{"https://vimeo.com/123", "", false},
		{"https://example.com/?ref=youtube.com", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			id, ok := YouTubeID(tt.url)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestRender_File(t *testing.T) {
	r := New()

	named := r.Render(decodeOne(t, `{"type":"file","file":{"type":"file","file":{"url":"https://s3/r.pdf"},"name":"report.pdf"}}`))
	require.NotNil(t, named)
	a := named.SelectElement("a")
	assert.Equal(t, "https://s3/r.pdf", a.SelectAttrValue("href", ""))
	assert.Contains(t, HTML(named), "report.pdf")

	unnamed := r.Render(decodeOne(t, `{"type":"file","file":{"type":"external","external":{"url":"https://x/f"}}}`))
	require.NotNil(t, unnamed)
	assert.Contains(t, HTML(unnamed), DefaultFileName)

	assert.Nil(t, r.Render(decodeOne(t, `{"type":"file","file":{"type":"file"}}`)))
}

func TestRender_Table(t *testing.T) {
	b := decodeOne(t, `{"type":"table","table":{"table_width":2,"has_column_header":true,"table_rows":[
		{"cells":[[{"plain_text":"Name"}],[{"plain_text":"Age"}]]},
		{"cells":[[{"plain_text":"Ann"}],[{"plain_text":"30"}]]},
		{"cells":[[{"plain_text":"Bob"}],[{"plain_text":"41"}]]}
	]}}`)
	el := New().Render(b)
	require.NotNil(t, el)

	head := el.FindElements(".//thead/tr/th")
	require.Len(t, head, 2)
	assert.Equal(t, "Name", head[0].SelectElement("span").Text())

	rows := el.FindElements(".//tbody/tr")
	require.Len(t, rows, 2)
	assert.Equal(t, "notion-table-row-odd", rows[0].SelectAttrValue("class", ""))
	assert.Equal(t, "notion-table-row-even", rows[1].SelectAttrValue("class", ""))
	assert.Empty(t, el.FindElements(".//tbody//th"))
}

func TestRender_TableFromChildren(t *testing.T) {
	b := decodeOne(t, `{"type":"table","table":{"has_row_header":true,"table_rows":[]},"children":[
		{"type":"table_row","table_row":{"cells":[[{"plain_text":"k"}],[{"plain_text":"v"}]]}},
		{"type":"paragraph","paragraph":{"rich_text":[{"plain_text":"stray"}]}}
	]}`)
	el := New().Render(b)
	require.NotNil(t, el)
	assert.Nil(t, el.FindElement(".//thead"))
	rows := el.FindElements(".//tbody/tr")
	require.Len(t, rows, 1)
	assert.Equal(t, "th", rows[0].ChildElements()[0].Tag, "row header")
	assert.Equal(t, "td", rows[0].ChildElements()[1].Tag)
}

func TestRender_EmptyTable(t *testing.T) {
	b := decodeOne(t, `{"type":"table","table":{"table_rows":[]},"children":[]}`)
	el := New().Render(b)
	require.NotNil(t, el)
	assert.Nil(t, el.FindElement(".//table"))
	assert.Contains(t, el.Text(), "no table rows")

	assert.NotNil(t, New().Render(&notion.Block{Type: notion.TypeTable}))
}

func TestRender_Toggle(t *testing.T) {
	b := decodeOne(t, `{"type":"toggle","toggle":{"rich_text":[{"plain_text":"Open me"}]},
		"children":[{"type":"paragraph","paragraph":{"rich_text":[{"plain_text":"inside"}]}}]}`)
	el := New().Render(b)
	require.NotNil(t, el)
	assert.Equal(t, "details", el.Tag)
	assert.Equal(t, "Open me", el.FindElement("./summary/span").Text())
	assert.NotNil(t, el.FindElement(".//p"))

	assert.NotNil(t, New().Render(&notion.Block{Type: notion.TypeToggle}), "toggle never drops")
}

func TestRender_ColumnList(t *testing.T) {
	b := decodeOne(t, `{"type":"column_list","column_list":{},"children":[
		{"type":"column","column":{},"children":[{"type":"paragraph","paragraph":{"rich_text":[{"plain_text":"left"}]}}]},
		{"type":"column","column":{},"children":[{"type":"divider","divider":{}}]}
	]}`)
	el := New().Render(b)
	require.NotNil(t, el)
	cols := el.SelectElements("div")
	require.Len(t, cols, 2)
	assert.NotNil(t, cols[0].SelectElement("p"))
	assert.NotNil(t, cols[1].SelectElement("hr"))
	assert.Equal(t, "2", el.SelectAttrValue("data-columns", ""))
}

func TestRender_Unsupported(t *testing.T) {
	r := New()

	el := r.Render(decodeOne(t, `{"type":"unknown_future_type","unknown_future_type":{"x":1}}`))
	require.NotNil(t, el)
	assert.Contains(t, HTML(el), "unknown_future_type")
	assert.Contains(t, HTML(el), "Unsupported block type:")

	eq := r.Render(decodeOne(t, `{"type":"equation","equation":{"expression":"x"}}`))
	require.NotNil(t, eq)
	assert.Contains(t, HTML(eq), "Math equations are not yet supported")
	assert.NotContains(t, HTML(el), "Math equations")
}

func TestRender_DepthLimit(t *testing.T) {
	deep := paragraph("leaf")
	for i := 0; i < 10; i++ {
		deep = bullet("level", deep)
	}
	el := New(WithMaxDepth(3)).Render(deep)
	require.NotNil(t, el)
	out := HTML(el)
	assert.Contains(t, out, "Content nested too deeply to display.")
	assert.NotContains(t, out, "leaf")

	unlimited := HTML(New(WithMaxDepth(0)).Render(deep))
	assert.Contains(t, unlimited, "leaf")
}

func TestWithRenderFunc(t *testing.T) {
	r := New(WithRenderFunc(notion.TypeEquation, func(b *notion.Block, renderChild func(*notion.Block) *etree.Element) *etree.Element {
		el := etree.NewElement("math")
		el.SetText(string(b.Unknown))
		return el
	}))
	el := r.Render(decodeOne(t, `{"type":"equation","equation":{"expression":"x"}}`))
	require.NotNil(t, el)
	assert.Equal(t, "math", el.Tag)
}

func TestRenderAll_DropsNilsInOrder(t *testing.T) {
	blocks := []*notion.Block{
		paragraph("one"),
		{Type: notion.TypeParagraph, Paragraph: &notion.TextPayload{}},
		{Type: notion.TypeDivider, Divider: &notion.EmptyPayload{}},
		paragraph("two"),
	}
	nodes := New().RenderAll(blocks)
	require.Len(t, nodes, 3)
	assert.Equal(t, "p", nodes[0].Tag)
	assert.Equal(t, "hr", nodes[1].Tag)
	assert.Equal(t, "two", nodes[2].SelectElement("span").Text())
}

func TestRenderAll_OneBadBlockDoesNotBlankPage(t *testing.T) {
	blocks, err := notion.DecodeBlocks([]byte(`[
		{"type":"paragraph","paragraph":{"rich_text":[{"plain_text":"before"}]}},
		{"type":"image","image":"not an object"},
		{"type":"table","table":7},
		{"type":"paragraph","paragraph":{"rich_text":[{"plain_text":"after"}]}}
	]`))
	require.NoError(t, err)
	out := HTML(New().RenderAll(blocks)...)
	assert.True(t, strings.Index(out, "before") < strings.Index(out, "after"))
	assert.Contains(t, out, "no table rows")
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://go.dev/doc", "https://go.dev/doc"},
		{"http://example.com", "http://example.com"},
		{"mailto:me@example.com", "mailto:me@example.com"},
		{"/blog/other-post", "/blog/other-post"},
		{"#section", "#section"},
		{"  https://go.dev  ", "https://go.dev"},
		{"javascript:alert(1)", ""},
		{"JavaScript:alert(1)", ""},
		{"data:text/html;base64,PHNjcmlwdD4=", ""},
		{"vbscript:msgbox", ""},
		{"java\tscript:alert(1)", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeURL(tt.raw), tt.raw)
	}
}

func TestRender_DropsUnsafeURLs(t *testing.T) {
	r := New()

	link := FormatRichText([]notion.RichText{{PlainText: "click", Link: &notion.Link{URL: "javascript:alert(1)"}}})[0].Node
	assert.Nil(t, link.FindElement(".//a"))
	assert.Equal(t, `<span>click</span>`, HTML(link), "text survives without the link")

	assert.Nil(t, r.Render(decodeOne(t, `{"type":"image","image":{"type":"external","external":{"url":"javascript:alert(1)"}}}`)))
	assert.Nil(t, r.Render(video("javascript:alert(1)")))
	assert.Nil(t, r.Render(decodeOne(t, `{"type":"file","file":{"type":"external","external":{"url":"javascript:alert(1)"}}}`)))
	assert.Nil(t, r.Render(decodeOne(t, `{"type":"bookmark","bookmark":{"url":"javascript:alert(1)"}}`)))

	callout := r.Render(decodeOne(t, `{"type":"callout","callout":{"rich_text":[{"plain_text":"x"}],"icon":{"type":"external","external":{"url":"javascript:alert(1)"}}}}`))
	require.NotNil(t, callout)
	assert.Nil(t, callout.FindElement(".//img"))
	assert.Equal(t, DefaultCalloutIcon, callout.FindElement(".//span[@class='notion-callout-icon']").Text())

	card := r.Render(decodeOne(t, `{"type":"bookmark","bookmark":{"url":"https://go.dev"}}`))
	require.NotNil(t, card)
	FillBookmark(card, BookmarkPreview{Title: "Go", Image: "javascript:alert(1)"})
	assert.Nil(t, card.FindElement(".//img"))
}
