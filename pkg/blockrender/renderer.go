package blockrender

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/yockii/notion_blog/pkg/logger"
	"github.com/yockii/notion_blog/pkg/notion"
)

// DefaultMaxDepth 默认最大嵌套深度
const DefaultMaxDepth = 32

// RenderFunc 自定义块渲染函数，renderChild按当前深度+1渲染子块
type RenderFunc func(b *notion.Block, renderChild func(*notion.Block) *etree.Element) *etree.Element

type blockFunc func(b *notion.Block, depth int) *etree.Element

// Renderer 块渲染器，渲染过程不修改输入，可并发使用
type Renderer struct {
	maxDepth int
	funcs    map[string]blockFunc
}

// Option 渲染器选项
type Option func(*Renderer)

// WithMaxDepth 设置最大嵌套深度，n<=0表示不限制
func WithMaxDepth(n int) Option {
	return func(r *Renderer) {
		r.maxDepth = n
	}
}

// WithRenderFunc 注册或覆盖某个块类型的渲染函数
func WithRenderFunc(blockType string, fn RenderFunc) Option {
	return func(r *Renderer) {
		r.funcs[blockType] = func(b *notion.Block, depth int) *etree.Element {
			return fn(b, func(child *notion.Block) *etree.Element {
				return r.render(child, depth+1)
			})
		}
	}
}

// New 创建渲染器
func New(opts ...Option) *Renderer {
	r := &Renderer{maxDepth: DefaultMaxDepth}
	r.funcs = map[string]blockFunc{
		notion.TypeParagraph:        r.renderParagraph,
		notion.TypeHeading1:         r.renderHeading,
		notion.TypeHeading2:         r.renderHeading,
		notion.TypeHeading3:         r.renderHeading,
		notion.TypeQuote:            r.renderQuote,
		notion.TypeBulletedListItem: r.renderListItem,
		notion.TypeNumberedListItem: r.renderListItem,
		notion.TypeToDo:             r.renderToDo,
		notion.TypeCallout:          r.renderCallout,
		notion.TypeCode:             r.renderCode,
		notion.TypeImage:            r.renderImage,
		notion.TypeVideo:            r.renderVideo,
		notion.TypeFile:             r.renderFile,
		notion.TypeBookmark:         r.renderBookmark,
		notion.TypeTable:            r.renderTable,
		notion.TypeToggle:           r.renderToggle,
		notion.TypeColumnList:       r.renderColumnList,
		notion.TypeDivider:          r.renderDivider,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render 渲染单个块，返回nil表示该块被丢弃
func (r *Renderer) Render(b *notion.Block) *etree.Element {
	return r.render(b, 0)
}

// RenderAll 按顺序渲染一组顶层块，丢弃nil结果
func (r *Renderer) RenderAll(blocks []*notion.Block) []*etree.Element {
	return r.renderChildren(blocks, 0)
}

func (r *Renderer) render(b *notion.Block, depth int) *etree.Element {
	if b == nil {
		return nil
	}
	if r.maxDepth > 0 && depth >= r.maxDepth {
		logger.Warn("块嵌套过深，停止递归",
			logger.F("id", b.ID),
			logger.F("type", b.Type),
			logger.F("depth", depth),
		)
		return placeholder("notion-depth-limit", "Content nested too deeply to display.")
	}
	fn, ok := r.funcs[b.Type]
	if !ok {
		return unsupported(b)
	}
	el := fn(b, depth)
	if el == nil {
		logger.Debug("丢弃无法渲染的块", logger.F("id", b.ID), logger.F("type", b.Type))
	}
	return el
}

func (r *Renderer) renderChildren(blocks []*notion.Block, depth int) []*etree.Element {
	out := make([]*etree.Element, 0, len(blocks))
	for _, child := range blocks {
		if el := r.render(child, depth); el != nil {
			out = append(out, el)
		}
	}
	return out
}

func (r *Renderer) appendChildren(parent *etree.Element, blocks []*notion.Block, depth int) {
	for _, el := range r.renderChildren(blocks, depth) {
		parent.AddChild(el)
	}
}

func (r *Renderer) renderParagraph(b *notion.Block, depth int) *etree.Element {
	runs := b.RichTextOf()
	if len(runs) == 0 {
		return nil
	}
	p := newElement("p", "notion-paragraph")
	appendRichText(p, runs)
	if len(b.Children) == 0 {
		return p
	}

	// 段落下的子块按缩进内容处理，p内不能放块级元素
	group := newElement("div", "notion-paragraph-group")
	group.AddChild(p)
	indent := group.CreateElement("div")
	indent.CreateAttr("class", "notion-indent")
	r.appendChildren(indent, b.Children, depth+1)
	return group
}

func (r *Renderer) renderHeading(b *notion.Block, depth int) *etree.Element {
	runs := b.RichTextOf()
	if len(runs) == 0 {
		return nil
	}
	var tag string
	var heading *notion.HeadingPayload
	switch b.Type {
	case notion.TypeHeading1:
		tag, heading = "h1", b.Heading1
	case notion.TypeHeading2:
		tag, heading = "h2", b.Heading2
	default:
		tag, heading = "h3", b.Heading3
	}
	h := newElement(tag, "notion-"+b.Type)
	appendRichText(h, runs)

	// 可折叠标题
	if heading.IsToggleable && len(b.Children) > 0 {
		details := newElement("details", "notion-toggle notion-toggle-heading")
		summary := details.CreateElement("summary")
		summary.AddChild(h)
		body := details.CreateElement("div")
		body.CreateAttr("class", "notion-toggle-body")
		r.appendChildren(body, b.Children, depth+1)
		return details
	}
	return h
}

func (r *Renderer) renderQuote(b *notion.Block, depth int) *etree.Element {
	runs := b.RichTextOf()
	if len(runs) == 0 {
		return nil
	}
	q := newElement("blockquote", "notion-quote")
	appendRichText(q, runs)
	r.appendChildren(q, b.Children, depth+1)
	return q
}

// renderListItem 每个列表项输出独立的ul/ol，子块放在li内同类型的嵌套列表中
func (r *Renderer) renderListItem(b *notion.Block, depth int) *etree.Element {
	tag := listTag(b.Type)
	list := newElement(tag, "notion-"+b.Type)
	li := list.CreateElement("li")
	appendRichText(li, b.RichTextOf())

	if len(b.Children) > 0 {
		nested := li.CreateElement(tag)
		for _, el := range r.renderChildren(b.Children, depth+1) {
			// 同类列表项直接并入嵌套列表，其余内容包一层li
			if el.Tag == tag && len(el.ChildElements()) == 1 && el.ChildElements()[0].Tag == "li" {
				nested.AddChild(el.ChildElements()[0])
				continue
			}
			wrapper := nested.CreateElement("li")
			wrapper.CreateAttr("class", "notion-list-nested")
			wrapper.AddChild(el)
		}
	}
	return list
}

func listTag(blockType string) string {
	if blockType == notion.TypeNumberedListItem {
		return "ol"
	}
	return "ul"
}

func (r *Renderer) renderToDo(b *notion.Block, depth int) *etree.Element {
	checked := b.ToDo != nil && b.ToDo.Checked

	div := newElement("div", "notion-to-do")
	box := div.CreateElement("input")
	box.CreateAttr("type", "checkbox")
	box.CreateAttr("disabled", "")
	if checked {
		box.CreateAttr("checked", "")
	}

	text := div.CreateElement("span")
	if checked {
		text.CreateAttr("class", "notion-to-do-text notion-to-do-checked")
		text = text.CreateElement("s")
	} else {
		text.CreateAttr("class", "notion-to-do-text")
	}
	appendRichText(text, b.RichTextOf())

	if len(b.Children) > 0 {
		children := div.CreateElement("div")
		children.CreateAttr("class", "notion-indent")
		r.appendChildren(children, b.Children, depth+1)
	}
	return div
}

// DefaultCalloutIcon 提示框缺省图标
const DefaultCalloutIcon = "💡"

func (r *Renderer) renderCallout(b *notion.Block, depth int) *etree.Element {
	div := newElement("div", "notion-callout")
	icon := div.CreateElement("span")
	icon.CreateAttr("class", "notion-callout-icon")

	var payload *notion.Icon
	if b.Callout != nil {
		payload = b.Callout.Icon
	}
	switch src := SafeURL(payload.ImageURL()); {
	case payload != nil && payload.Emoji != "":
		icon.SetText(payload.Emoji)
	case src != "":
		img := icon.CreateElement("img")
		img.CreateAttr("src", src)
		img.CreateAttr("alt", "")
	default:
		icon.SetText(DefaultCalloutIcon)
	}

	text := div.CreateElement("div")
	text.CreateAttr("class", "notion-callout-text")
	appendRichText(text, b.RichTextOf())
	r.appendChildren(text, b.Children, depth+1)
	return div
}

// plainTextLanguages 不显示语言标签的取值
var plainTextLanguages = map[string]bool{
	"":           true,
	"text":       true,
	"plain text": true,
}

func (r *Renderer) renderCode(b *notion.Block, _ int) *etree.Element {
	var language, code string
	var caption []notion.RichText
	if b.Code != nil {
		language = b.Code.Language
		// 长代码会被拆成多个片段
		code = notion.PlainTextOf(b.Code.RichText)
		caption = b.Code.Caption
	}

	div := newElement("div", "notion-code")
	if !plainTextLanguages[language] {
		label := div.CreateElement("div")
		label.CreateAttr("class", "notion-code-language")
		label.SetText(language)
	}
	pre := div.CreateElement("pre")
	codeEl := pre.CreateElement("code")
	if !plainTextLanguages[language] {
		codeEl.CreateAttr("class", "language-"+language)
	}
	codeEl.SetText(code)

	if len(caption) > 0 {
		fc := div.CreateElement("div")
		fc.CreateAttr("class", "notion-code-caption")
		appendRichText(fc, caption)
	}
	return div
}

func (r *Renderer) renderToggle(b *notion.Block, depth int) *etree.Element {
	details := newElement("details", "notion-toggle")
	summary := details.CreateElement("summary")
	appendRichText(summary, b.RichTextOf())
	body := details.CreateElement("div")
	body.CreateAttr("class", "notion-toggle-body")
	r.appendChildren(body, b.Children, depth+1)
	return details
}

func (r *Renderer) renderColumnList(b *notion.Block, depth int) *etree.Element {
	row := newElement("div", "notion-column-list")
	columns := 0
	for _, col := range b.Children {
		if col == nil {
			continue
		}
		column := row.CreateElement("div")
		column.CreateAttr("class", "notion-column")
		r.appendChildren(column, col.Children, depth+2)
		columns++
	}
	row.CreateAttr("data-columns", strconv.Itoa(columns))
	return row
}

func (r *Renderer) renderDivider(*notion.Block, int) *etree.Element {
	return newElement("hr", "notion-divider")
}

// unsupported 未知类型的诊断块，直接显示类型名
func unsupported(b *notion.Block) *etree.Element {
	logger.Debug("不支持的块类型", logger.F("id", b.ID), logger.F("type", b.Type))

	div := newElement("div", "notion-unsupported")
	p := div.CreateElement("p")
	strong := p.CreateElement("strong")
	strong.SetText("Unsupported block type:")
	strong.SetTail(" " + b.Type)
	if b.Type == notion.TypeEquation {
		note := div.CreateElement("p")
		note.CreateAttr("class", "notion-unsupported-note")
		note.SetText("Math equations are not yet supported in this renderer.")
	}
	return div
}

// placeholder 可见的诊断占位
func placeholder(class, text string) *etree.Element {
	div := newElement("div", "notion-placeholder "+class)
	div.SetText(text)
	return div
}

func newElement(tag, class string) *etree.Element {
	el := etree.NewElement(tag)
	if class != "" {
		el.CreateAttr("class", class)
	}
	return el
}
