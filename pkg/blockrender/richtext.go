package blockrender

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/yockii/notion_blog/pkg/notion"
)

// Inline 一个行内片段的渲染结果，Key为片段在序列中的位置
type Inline struct {
	Key  string
	Node *etree.Element
}

// FormatRichText 将行内片段序列逐个转换为嵌套的格式元素，输出与输入一一对应。
// 包裹顺序固定（由内到外）：strong、em、del、u、code，有链接时最外层再加a，
// 最后统一包一层span
func FormatRichText(runs []notion.RichText) []Inline {
	inlines := make([]Inline, 0, len(runs))
	for i, run := range runs {
		inlines = append(inlines, Inline{
			Key:  strconv.Itoa(i),
			Node: formatRun(run),
		})
	}
	return inlines
}

func formatRun(run notion.RichText) *etree.Element {
	var content etree.Token = etree.NewText(run.PlainText)
	wrap := func(tag string) *etree.Element {
		el := etree.NewElement(tag)
		el.AddChild(content)
		content = el
		return el
	}

	ann := run.Annotations
	if ann.Bold {
		wrap("strong")
	}
	if ann.Italic {
		wrap("em")
	}
	if ann.Strikethrough {
		wrap("del")
	}
	if ann.Underline {
		wrap("u")
	}
	if ann.Code {
		wrap("code").CreateAttr("class", "notion-inline-code")
	}

	if run.HasLink() {
		// 不安全的链接只保留文字
		if href := SafeURL(run.Link.URL); href != "" {
			a := wrap("a")
			a.CreateAttr("href", href)
			setExternal(a)
		}
	}

	return wrap("span")
}

// appendRichText 将格式化后的片段依次挂到parent下
func appendRichText(parent *etree.Element, runs []notion.RichText) {
	for _, inline := range FormatRichText(runs) {
		parent.AddChild(inline.Node)
	}
}

// setExternal 新窗口打开且不向目标页暴露来源
func setExternal(a *etree.Element) {
	a.CreateAttr("target", "_blank")
	a.CreateAttr("rel", "noopener noreferrer")
}
