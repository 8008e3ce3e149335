package notion

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/yockii/notion_blog/pkg/logger"
)

// ErrInvalidDocument 顶层结构无法识别为块序列
var ErrInvalidDocument = errors.New("invalid block document")

// DecodeBlocks 解析块序列，支持裸数组以及 {"object":"list","results":[...]} 的列表响应。
// 单个块结构异常时跳过该块，不影响其余块
func DecodeBlocks(data []byte) ([]*Block, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidDocument)
	}
	res := gjson.ParseBytes(data)
	if res.IsObject() {
		res = res.Get("results")
	}
	if !res.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of blocks", ErrInvalidDocument)
	}
	return decodeList(res), nil
}

func decodeList(res gjson.Result) []*Block {
	blocks := make([]*Block, 0, len(res.Array()))
	res.ForEach(func(_, value gjson.Result) bool {
		b := new(Block)
		if err := b.decode(value); err != nil {
			logger.Debug("跳过无法解析的块", logger.F("error", err))
			return true
		}
		blocks = append(blocks, b)
		return true
	})
	return blocks
}

// UnmarshalJSON 只解析与type一致的负载字段
func (b *Block) UnmarshalJSON(data []byte) error {
	return b.decode(gjson.ParseBytes(data))
}

func (b *Block) decode(res gjson.Result) error {
	if !res.IsObject() {
		return errors.New("block is not an object")
	}
	*b = Block{
		ID:             res.Get("id").String(),
		Type:           res.Get("type").String(),
		HasChildren:    res.Get("has_children").Bool(),
		CreatedTime:    res.Get("created_time").String(),
		LastEditedTime: res.Get("last_edited_time").String(),
	}
	if children := res.Get("children"); children.IsArray() {
		b.Children = decodeList(children)
	}

	// 类型名不走gjson路径语法
	payload, ok := res.Map()[b.Type]
	if !ok || b.Type == "" {
		return nil
	}
	if err := b.decodePayload([]byte(payload.Raw)); err != nil {
		// 负载结构异常时按无负载处理，由渲染器降级
		logger.Debug("块负载解析失败",
			logger.F("id", b.ID),
			logger.F("type", b.Type),
			logger.F("error", err),
		)
	}
	return nil
}

func (b *Block) decodePayload(raw []byte) error {
	switch b.Type {
	case TypeParagraph:
		return unmarshalInto(raw, &b.Paragraph)
	case TypeHeading1:
		return unmarshalInto(raw, &b.Heading1)
	case TypeHeading2:
		return unmarshalInto(raw, &b.Heading2)
	case TypeHeading3:
		return unmarshalInto(raw, &b.Heading3)
	case TypeBulletedListItem:
		return unmarshalInto(raw, &b.BulletedListItem)
	case TypeNumberedListItem:
		return unmarshalInto(raw, &b.NumberedListItem)
	case TypeToDo:
		return unmarshalInto(raw, &b.ToDo)
	case TypeQuote:
		return unmarshalInto(raw, &b.Quote)
	case TypeCallout:
		return unmarshalInto(raw, &b.Callout)
	case TypeCode:
		return unmarshalInto(raw, &b.Code)
	case TypeImage:
		return unmarshalInto(raw, &b.Image)
	case TypeVideo:
		return unmarshalInto(raw, &b.Video)
	case TypeFile:
		return unmarshalInto(raw, &b.File)
	case TypeBookmark:
		return unmarshalInto(raw, &b.Bookmark)
	case TypeTable:
		return unmarshalInto(raw, &b.Table)
	case TypeTableRow:
		return unmarshalInto(raw, &b.TableRow)
	case TypeToggle:
		return unmarshalInto(raw, &b.Toggle)
	case TypeColumnList:
		b.ColumnList = &EmptyPayload{}
	case TypeColumn:
		b.Column = &EmptyPayload{}
	case TypeDivider:
		b.Divider = &EmptyPayload{}
	default:
		b.Unknown = append(json.RawMessage(nil), raw...)
	}
	return nil
}

// unmarshalInto 解析到新的负载对象，失败时负载保持nil
func unmarshalInto[T any](raw []byte, dst **T) error {
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return err
	}
	*dst = v
	return nil
}

// MarshalJSON 未知类型的原始负载写回到type同名字段
func (b Block) MarshalJSON() ([]byte, error) {
	type alias Block
	data, err := json.Marshal(alias(b))
	if err != nil || len(b.Unknown) == 0 || b.Type == "" {
		return data, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	fields[b.Type] = b.Unknown
	return json.Marshal(fields)
}
