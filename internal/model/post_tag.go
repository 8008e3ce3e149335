package model

import (
	"github.com/yockii/notion_blog/pkg/util"
	"gorm.io/gorm"
)

// PostTag 文章标签索引，每个文章的每个标签一行
type PostTag struct {
	BaseModel
	PostID uint64 `json:"postId,string" gorm:"uniqueIndex:idx_post_tag;not null"`
	Name   string `json:"name" gorm:"type:varchar(100);uniqueIndex:idx_post_tag;index;not null"`
}

func (t *PostTag) TableComment() string {
	return "文章标签表"
}

func (t *PostTag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == 0 {
		t.ID = util.NewID()
	}
	return nil
}

func init() {
	models = append(models, &PostTag{})
}

// TagCount 标签及其已发布文章数
type TagCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

func replaceTags(tx *gorm.DB, postID uint64, tags []string) error {
	if err := tx.Where("post_id = ?", postID).Delete(&PostTag{}).Error; err != nil {
		return err
	}
	tags = NormalizeTags(tags)
	if len(tags) == 0 {
		return nil
	}
	rows := make([]*PostTag, 0, len(tags))
	for _, name := range tags {
		rows = append(rows, &PostTag{PostID: postID, Name: name})
	}
	return tx.Create(&rows).Error
}
