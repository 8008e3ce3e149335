package blockrender

import (
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/yockii/notion_blog/pkg/notion"
)

const (
	// BookmarkURLAttr 书签卡片上记录目标地址的属性，预览补全时据此查找卡片
	BookmarkURLAttr = "data-bookmark-url"
	bookmarkCaption = "data-bookmark-caption"
	bookmarkClass   = "notion-bookmark"
)

// BookmarkPreview 书签卡片上展示的预览信息
type BookmarkPreview struct {
	Title       string
	Description string
	Image       string
	SiteName    string
}

func (r *Renderer) renderBookmark(b *notion.Block, _ int) *etree.Element {
	if b.Bookmark == nil {
		return nil
	}
	target := SafeURL(b.Bookmark.URL)
	if target == "" {
		return nil
	}
	card := newElement("div", bookmarkClass)
	card.CreateAttr(BookmarkURLAttr, target)
	if caption := notion.PlainTextOf(b.Bookmark.Caption); caption != "" {
		card.CreateAttr(bookmarkCaption, caption)
	}
	FillBookmark(card, BookmarkPreview{})
	return card
}

// FillBookmark 按预览信息重建卡片内容。标题依次取预览标题、书签说明、主机名
func FillBookmark(card *etree.Element, p BookmarkPreview) {
	target := SafeURL(card.SelectAttrValue(BookmarkURLAttr, ""))
	host := Hostname(target)
	for _, child := range card.ChildElements() {
		card.RemoveChild(child)
	}

	a := card.CreateElement("a")
	a.CreateAttr("href", target)
	setExternal(a)
	a.CreateAttr("class", "notion-bookmark-link")

	body := a.CreateElement("div")
	body.CreateAttr("class", "notion-bookmark-body")

	site := p.SiteName
	if site == "" {
		site = host
	}
	siteEl := body.CreateElement("div")
	siteEl.CreateAttr("class", "notion-bookmark-site")
	siteEl.SetText(site)

	title := p.Title
	if title == "" {
		title = card.SelectAttrValue(bookmarkCaption, "")
	}
	if title == "" {
		title = host
	}
	titleEl := body.CreateElement("h3")
	titleEl.CreateAttr("class", "notion-bookmark-title")
	titleEl.SetText(title)

	if p.Description != "" {
		desc := body.CreateElement("p")
		desc.CreateAttr("class", "notion-bookmark-description")
		desc.SetText(p.Description)
	}

	urlEl := body.CreateElement("div")
	urlEl.CreateAttr("class", "notion-bookmark-url")
	urlEl.SetText(target)

	if image := SafeURL(p.Image); image != "" {
		cover := a.CreateElement("div")
		cover.CreateAttr("class", "notion-bookmark-image")
		img := cover.CreateElement("img")
		img.CreateAttr("src", image)
		img.CreateAttr("alt", title)
		img.CreateAttr("loading", "lazy")
	}
}

// FindBookmarks 深度优先找出渲染树中的所有书签卡片
func FindBookmarks(nodes []*etree.Element) []*etree.Element {
	var cards []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el.SelectAttr(BookmarkURLAttr) != nil {
			cards = append(cards, el)
			return
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	for _, n := range nodes {
		if n != nil {
			walk(n)
		}
	}
	return cards
}

// BookmarkURL 卡片对应的目标地址
func BookmarkURL(card *etree.Element) string {
	return card.SelectAttrValue(BookmarkURLAttr, "")
}

// Hostname 地址的主机名，无法解析时原样返回
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}

var safeSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
}

// SafeURL 只放行http、https、mailto及相对地址，其余返回空串
func SafeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "" && !safeSchemes[u.Scheme] {
		return ""
	}
	return raw
}
