package blockrender

import (
	"bytes"
	"fmt"
	"io"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// WriteHTML 按HTML5规则输出渲染树（空元素不自闭合、文本和属性转义）
func WriteHTML(w io.Writer, nodes []*etree.Element) error {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if err := html.Render(w, toHTMLNode(n)); err != nil {
			return fmt.Errorf("render html <%s>: %w", n.Tag, err)
		}
	}
	return nil
}

// HTML 渲染树转为HTML字符串
func HTML(nodes ...*etree.Element) string {
	var buf bytes.Buffer
	// 写入内存缓冲区不会失败
	_ = WriteHTML(&buf, nodes)
	return buf.String()
}

func toHTMLNode(el *etree.Element) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     el.Tag,
		DataAtom: atom.Lookup([]byte(el.Tag)),
	}
	for _, attr := range el.Attr {
		n.Attr = append(n.Attr, html.Attribute{Key: attr.FullKey(), Val: attr.Value})
	}
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			n.AppendChild(toHTMLNode(t))
		case *etree.CharData:
			n.AppendChild(&html.Node{Type: html.TextNode, Data: t.Data})
		}
	}
	return n
}
