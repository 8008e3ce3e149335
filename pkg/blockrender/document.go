package blockrender

import (
	"github.com/beevik/etree"
	"github.com/yockii/notion_blog/pkg/notion"
)

// EmptyDocumentText 文章没有任何可渲染内容时的提示
const EmptyDocumentText = "No content available for this post."

// EmptyPlaceholder 空文章占位
func EmptyPlaceholder() *etree.Element {
	p := newElement("p", "notion-empty")
	p.SetText(EmptyDocumentText)
	return p
}

// RenderDocument 渲染整篇文章：逐块渲染后合并相邻的同类列表，没有内容时返回占位
func (r *Renderer) RenderDocument(blocks []*notion.Block) []*etree.Element {
	nodes := MergeLists(r.RenderAll(blocks))
	if len(nodes) == 0 {
		return []*etree.Element{EmptyPlaceholder()}
	}
	return nodes
}

// MergeLists 将相邻的同类列表合并为一个列表，有序列表的编号因此连续
func MergeLists(nodes []*etree.Element) []*etree.Element {
	out := make([]*etree.Element, 0, len(nodes))
	for _, n := range nodes {
		if len(out) > 0 && sameList(out[len(out)-1], n) {
			prev := out[len(out)-1]
			for _, li := range n.ChildElements() {
				prev.AddChild(li)
			}
			continue
		}
		out = append(out, n)
	}
	return out
}

func sameList(a, b *etree.Element) bool {
	if a.Tag != b.Tag || (a.Tag != "ul" && a.Tag != "ol") {
		return false
	}
	return a.SelectAttrValue("class", "") == b.SelectAttrValue("class", "")
}
