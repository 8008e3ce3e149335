package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yockii/notion_blog/pkg/util"
	"gorm.io/gorm"
)

// Post 文章元数据及块内容快照
type Post struct {
	BaseModel
	NotionID    string     `json:"notionId" gorm:"type:varchar(36);index"`
	Slug        string     `json:"slug" gorm:"type:varchar(200);uniqueIndex;not null"`
	Title       string     `json:"title" gorm:"type:varchar(255);not null"`
	Description string     `json:"description" gorm:"type:varchar(1000)"`
	CoverImage  string     `json:"coverImage" gorm:"type:varchar(1000)"`
	Tags        []string   `json:"tags" gorm:"type:text;serializer:json"`
	Published   *bool      `json:"published,omitempty" gorm:"index;not null;default:false"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" gorm:"index"`
	Content     RawJSON    `json:"content,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt,omitzero"`
}

func (p *Post) TableComment() string {
	return "文章表"
}

// BeforeCreate 创建前钩子
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == 0 {
		p.ID = util.NewID()
	}
	return nil
}

// AfterSave 同步标签索引表，Tags为nil表示本次未修改标签
func (p *Post) AfterSave(tx *gorm.DB) error {
	if p.Tags == nil {
		return nil
	}
	return replaceTags(tx.Session(&gorm.Session{NewDB: true}), p.ID, p.Tags)
}

// AfterDelete 删除文章的标签索引
func (p *Post) AfterDelete(tx *gorm.DB) error {
	return tx.Session(&gorm.Session{NewDB: true}).Where("post_id = ?", p.ID).Delete(&PostTag{}).Error
}

// IsPublished 是否已发布
func (p *Post) IsPublished() bool {
	return p.Published != nil && *p.Published
}

func init() {
	models = append(models, &Post{})
}

// NormalizeTag 标签统一为去空白的小写形式
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags 规范化并去重，保持原有顺序，nil保持为nil
func NormalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = NormalizeTag(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// RawJSON 原样存储的JSON文本
type RawJSON []byte

func (j RawJSON) GormDataType() string {
	return "text"
}

func (j RawJSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *RawJSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = RawJSON(v)
	default:
		return fmt.Errorf("unsupported RawJSON source %T", value)
	}
	return nil
}

func (j RawJSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *RawJSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return errors.New("RawJSON: UnmarshalJSON on nil pointer")
	}
	if string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[:0], data...)
	return nil
}
