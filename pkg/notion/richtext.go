package notion

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Annotations 行内格式标记，缺失时均为false
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color,omitempty"`
}

// Link 超链接目标
type Link struct {
	URL string `json:"url"`
}

// RichText 一段格式一致的行内文本
type RichText struct {
	PlainText   string      `json:"plain_text"`
	Annotations Annotations `json:"annotations"`
	Link        *Link       `json:"-"`
}

// NewText 构造纯文本片段
func NewText(s string) RichText {
	return RichText{PlainText: s}
}

// HasLink 是否带有效链接
func (r RichText) HasLink() bool {
	return r.Link != nil && r.Link.URL != ""
}

// UnmarshalJSON 宽松解析：plain_text缺失时退回text.content，text.link缺失时退回href，
// 无法识别的结构得到空片段而不是错误
func (r *RichText) UnmarshalJSON(data []byte) error {
	*r = RichText{}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return nil
	}

	if pt := res.Get("plain_text"); pt.Exists() {
		r.PlainText = pt.String()
	} else {
		r.PlainText = res.Get("text.content").String()
	}

	ann := res.Get("annotations")
	r.Annotations = Annotations{
		Bold:          ann.Get("bold").Bool(),
		Italic:        ann.Get("italic").Bool(),
		Strikethrough: ann.Get("strikethrough").Bool(),
		Underline:     ann.Get("underline").Bool(),
		Code:          ann.Get("code").Bool(),
		Color:         ann.Get("color").String(),
	}

	url := res.Get("text.link.url").String()
	if url == "" {
		url = res.Get("href").String()
	}
	if url != "" {
		r.Link = &Link{URL: url}
	}
	return nil
}

// MarshalJSON 按Notion接口的结构输出，保证存储后可再次解析
func (r RichText) MarshalJSON() ([]byte, error) {
	type text struct {
		Content string `json:"content"`
		Link    *Link  `json:"link"`
	}
	out := struct {
		Type        string      `json:"type"`
		Text        text        `json:"text"`
		Annotations Annotations `json:"annotations"`
		PlainText   string      `json:"plain_text"`
		Href        *string     `json:"href"`
	}{
		Type:        "text",
		Text:        text{Content: r.PlainText, Link: r.Link},
		Annotations: r.Annotations,
		PlainText:   r.PlainText,
	}
	if r.HasLink() {
		out.Href = &r.Link.URL
	}
	return json.Marshal(out)
}

// PlainTextOf 拼接多个片段的纯文本
func PlainTextOf(runs []RichText) string {
	var sb strings.Builder
	for _, run := range runs {
		sb.WriteString(run.PlainText)
	}
	return sb.String()
}
