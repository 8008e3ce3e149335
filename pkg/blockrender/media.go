package blockrender

import (
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/yockii/notion_blog/pkg/notion"
)

const (
	// DefaultImageAlt 图片无说明时的替代文本
	DefaultImageAlt = "Blog image"
	// DefaultFileName 附件无名称时的显示文本
	DefaultFileName = "Download File"

	youTubeEmbedPrefix = "https://www.youtube.com/embed/"
	videoFallbackText  = "Your browser does not support the video tag."
)

func (r *Renderer) renderImage(b *notion.Block, _ int) *etree.Element {
	src := SafeURL(b.Image.URL())
	if src == "" {
		return nil
	}
	caption := b.Image.Caption
	alt := notion.PlainTextOf(caption)
	if alt == "" {
		alt = DefaultImageAlt
	}

	figure := newElement("figure", "notion-image")
	img := figure.CreateElement("img")
	img.CreateAttr("src", src)
	img.CreateAttr("alt", alt)
	img.CreateAttr("loading", "lazy")
	appendCaption(figure, caption)
	return figure
}

func (r *Renderer) renderVideo(b *notion.Block, _ int) *etree.Element {
	src := SafeURL(b.Video.URL())
	if src == "" {
		return nil
	}

	figure := newElement("figure", "notion-video")
	if id, ok := YouTubeID(src); ok {
		frame := figure.CreateElement("div")
		frame.CreateAttr("class", "notion-video-frame")
		iframe := frame.CreateElement("iframe")
		iframe.CreateAttr("src", youTubeEmbedPrefix+id)
		iframe.CreateAttr("title", "YouTube video")
		iframe.CreateAttr("frameborder", "0")
		iframe.CreateAttr("allow", "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture")
		iframe.CreateAttr("allowfullscreen", "")
	} else {
		// 非YouTube地址或无法提取视频ID时使用原生播放器
		video := figure.CreateElement("video")
		video.CreateAttr("controls", "")
		video.CreateAttr("src", src)
		video.SetText(videoFallbackText)
	}
	appendCaption(figure, b.Video.Caption)
	return figure
}

// YouTubeID 从youtu.be短链或youtube.com地址中提取视频ID
func YouTubeID(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch {
	case host == "youtu.be":
		id, _, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		id = u.Query().Get("v")
		if id == "" {
			for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
				if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
					id, _, _ = strings.Cut(rest, "/")
					break
				}
			}
		}
	default:
		return "", false
	}
	if id == "" {
		return "", false
	}
	return id, true
}

func (r *Renderer) renderFile(b *notion.Block, _ int) *etree.Element {
	if b.File == nil {
		return nil
	}
	href := SafeURL(b.File.URL())
	if href == "" {
		return nil
	}
	name := b.File.Name
	if name == "" {
		name = DefaultFileName
	}

	div := newElement("div", "notion-file")
	a := div.CreateElement("a")
	a.CreateAttr("href", href)
	setExternal(a)
	a.CreateAttr("download", "")
	icon := a.CreateElement("span")
	icon.CreateAttr("class", "notion-file-icon")
	icon.SetText("📁")
	label := a.CreateElement("span")
	label.CreateAttr("class", "notion-file-name")
	label.SetText(name)
	return div
}

func appendCaption(figure *etree.Element, caption []notion.RichText) {
	if len(caption) == 0 {
		return
	}
	fc := figure.CreateElement("figcaption")
	appendRichText(fc, caption)
}
