package util

import (
	"strings"

	"github.com/google/uuid"
)

// NormalizeNotionID 将Notion的32位无横线ID或页面URL末尾的ID规范为带横线的UUID格式
// 无法识别时返回空字符串
func NormalizeNotionID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	// 兼容 https://www.notion.so/Title-<id>?v=xxx 形式
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		raw = raw[i+1:]
	}
	if len(raw) > 32 {
		if i := strings.LastIndex(raw, "-"); i >= 0 && len(raw)-i-1 == 32 {
			raw = raw[i+1:]
		}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return ""
	}
	return id.String()
}
