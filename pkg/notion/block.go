package notion

import "encoding/json"

// 已知块类型，外部schema随时可能新增类型，未知类型由渲染器按诊断块处理
const (
	TypeParagraph        = "paragraph"
	TypeHeading1         = "heading_1"
	TypeHeading2         = "heading_2"
	TypeHeading3         = "heading_3"
	TypeBulletedListItem = "bulleted_list_item"
	TypeNumberedListItem = "numbered_list_item"
	TypeToDo             = "to_do"
	TypeQuote            = "quote"
	TypeCallout          = "callout"
	TypeCode             = "code"
	TypeImage            = "image"
	TypeVideo            = "video"
	TypeFile             = "file"
	TypeBookmark         = "bookmark"
	TypeTable            = "table"
	TypeTableRow         = "table_row"
	TypeToggle           = "toggle"
	TypeColumnList       = "column_list"
	TypeColumn           = "column"
	TypeDivider          = "divider"
	TypeEquation         = "equation"
)

// 媒体来源
const (
	SourceExternal = "external"
	SourceHosted   = "file"
)

// Block 文档树中的一个节点，按Type只填充对应的一个负载字段
type Block struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	HasChildren    bool     `json:"has_children"`
	CreatedTime    string   `json:"created_time,omitempty"`
	LastEditedTime string   `json:"last_edited_time,omitempty"`
	Children       []*Block `json:"children,omitempty"`

	Paragraph        *TextPayload     `json:"paragraph,omitempty"`
	Heading1         *HeadingPayload  `json:"heading_1,omitempty"`
	Heading2         *HeadingPayload  `json:"heading_2,omitempty"`
	Heading3         *HeadingPayload  `json:"heading_3,omitempty"`
	BulletedListItem *TextPayload     `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextPayload     `json:"numbered_list_item,omitempty"`
	ToDo             *ToDoPayload     `json:"to_do,omitempty"`
	Quote            *TextPayload     `json:"quote,omitempty"`
	Callout          *CalloutPayload  `json:"callout,omitempty"`
	Code             *CodePayload     `json:"code,omitempty"`
	Image            *MediaPayload    `json:"image,omitempty"`
	Video            *MediaPayload    `json:"video,omitempty"`
	File             *FilePayload     `json:"file,omitempty"`
	Bookmark         *BookmarkPayload `json:"bookmark,omitempty"`
	Table            *TablePayload    `json:"table,omitempty"`
	TableRow         *TableRowPayload `json:"table_row,omitempty"`
	Toggle           *TextPayload     `json:"toggle,omitempty"`
	ColumnList       *EmptyPayload    `json:"column_list,omitempty"`
	Column           *EmptyPayload    `json:"column,omitempty"`
	Divider          *EmptyPayload    `json:"divider,omitempty"`

	// Unknown 没有对应负载结构的类型保留原始JSON
	Unknown json.RawMessage `json:"-"`
}

// TextPayload 只带行内文本的负载（段落、引用、折叠、列表项）
type TextPayload struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

// HeadingPayload 标题
type HeadingPayload struct {
	TextPayload
	IsToggleable bool `json:"is_toggleable,omitempty"`
}

// ToDoPayload 待办
type ToDoPayload struct {
	TextPayload
	Checked bool `json:"checked"`
}

// CalloutPayload 提示框
type CalloutPayload struct {
	TextPayload
	Icon *Icon `json:"icon,omitempty"`
}

// Icon 表情或图片图标
type Icon struct {
	Type     string   `json:"type"`
	Emoji    string   `json:"emoji,omitempty"`
	External *FileRef `json:"external,omitempty"`
	File     *FileRef `json:"file,omitempty"`
}

// ImageURL 图标为图片时的地址
func (i *Icon) ImageURL() string {
	if i == nil {
		return ""
	}
	return resolveURL(i.Type, i.External, i.File)
}

// FileRef 外链或托管文件地址
type FileRef struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

// CodePayload 代码块
type CodePayload struct {
	RichText []RichText `json:"rich_text"`
	Caption  []RichText `json:"caption,omitempty"`
	Language string     `json:"language,omitempty"`
}

// MediaPayload 图片、视频
type MediaPayload struct {
	Type     string     `json:"type"`
	External *FileRef   `json:"external,omitempty"`
	File     *FileRef   `json:"file,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

// URL 按来源类型取地址，无法解析时返回空
func (m *MediaPayload) URL() string {
	if m == nil {
		return ""
	}
	return resolveURL(m.Type, m.External, m.File)
}

// FilePayload 附件
type FilePayload struct {
	MediaPayload
	Name string `json:"name,omitempty"`
}

// BookmarkPayload 书签
type BookmarkPayload struct {
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

// TablePayload 表格，行既可能内嵌在table_rows中，也可能是table_row类型的子块
type TablePayload struct {
	TableWidth      int               `json:"table_width,omitempty"`
	HasColumnHeader bool              `json:"has_column_header"`
	HasRowHeader    bool              `json:"has_row_header"`
	TableRows       []TableRowPayload `json:"table_rows,omitempty"`
}

// TableRowPayload 表格行，每个单元格是一组行内文本
type TableRowPayload struct {
	Cells [][]RichText `json:"cells"`
}

// EmptyPayload 无内容的负载（分割线、分栏）
type EmptyPayload struct{}

func resolveURL(sourceType string, external, hosted *FileRef) string {
	switch sourceType {
	case SourceExternal:
		if external != nil {
			return external.URL
		}
	case SourceHosted:
		if hosted != nil {
			return hosted.URL
		}
	case "":
		// 缺少来源类型时取任一存在的地址
		if external != nil && external.URL != "" {
			return external.URL
		}
		if hosted != nil {
			return hosted.URL
		}
	}
	return ""
}

// RichTextOf 文本类负载的行内文本，非文本类型返回nil
func (b *Block) RichTextOf() []RichText {
	if b == nil {
		return nil
	}
	switch b.Type {
	case TypeParagraph:
		return textOf(b.Paragraph)
	case TypeHeading1:
		return headingOf(b.Heading1)
	case TypeHeading2:
		return headingOf(b.Heading2)
	case TypeHeading3:
		return headingOf(b.Heading3)
	case TypeBulletedListItem:
		return textOf(b.BulletedListItem)
	case TypeNumberedListItem:
		return textOf(b.NumberedListItem)
	case TypeQuote:
		return textOf(b.Quote)
	case TypeToggle:
		return textOf(b.Toggle)
	case TypeToDo:
		if b.ToDo != nil {
			return b.ToDo.RichText
		}
	case TypeCallout:
		if b.Callout != nil {
			return b.Callout.RichText
		}
	case TypeCode:
		if b.Code != nil {
			return b.Code.RichText
		}
	}
	return nil
}

func textOf(p *TextPayload) []RichText {
	if p == nil {
		return nil
	}
	return p.RichText
}

func headingOf(p *HeadingPayload) []RichText {
	if p == nil {
		return nil
	}
	return p.RichText
}
