package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yockii/notion_blog/internal/constant"
	"github.com/yockii/notion_blog/internal/model"
	"github.com/yockii/notion_blog/pkg/logger"
	"github.com/yockii/notion_blog/pkg/notion"
	"github.com/yockii/notion_blog/pkg/util"
	"gorm.io/gorm"
)

type postService struct {
	*BaseService[*model.Post]
	db *gorm.DB
}

func NewPostService(db *gorm.DB) *postService {
	s := &postService{db: db}
	s.BaseService = NewBaseService[*model.Post](db, s)
	return s
}

func (s *postService) CheckDuplicate(record *model.Post) (bool, error) {
	if record.Slug == "" {
		return false, nil
	}
	query := s.db.Model(&model.Post{}).Where("slug = ?", record.Slug)
	if record.ID != 0 {
		query = query.Where("id <> ?", record.ID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *postService) BuildCondition(query *gorm.DB, condition *model.Post) *gorm.DB {
	if condition == nil {
		return query
	}
	if len(condition.Tags) > 0 {
		if tag := model.NormalizeTag(condition.Tags[0]); tag != "" {
			// 通过标签索引表精确匹配
			query = query.Where("id IN (?)", s.db.Model(&model.PostTag{}).Select("post_id").Where("name = ?", tag))
		}
	}
	if condition.Published != nil {
		query = query.Where("published = ?", *condition.Published)
	}
	if condition.Title != "" {
		query = query.Where("title LIKE ?", "%"+condition.Title+"%")
	}
	return query
}

func (s *postService) ListOrder() string {
	return "published_at DESC, created_at DESC"
}

// Create 校验后创建文章
func (s *postService) Create(ctx context.Context, record *model.Post) error {
	if record == nil || strings.TrimSpace(record.Slug) == "" || strings.TrimSpace(record.Title) == "" {
		return constant.ErrInvalidParams
	}
	if err := prepare(record, nil); err != nil {
		return err
	}
	if record.Published == nil {
		published := false
		record.Published = &published
	}
	return s.BaseService.Create(ctx, record)
}

// Update 更新文章，内容需能解析为块序列
func (s *postService) Update(ctx context.Context, record *model.Post) error {
	if record == nil {
		return constant.ErrInvalidParams
	}
	if record.ID == 0 {
		return constant.ErrRecordIDEmpty
	}
	existing, err := s.Get(ctx, record.ID)
	if err != nil {
		return err
	}
	if err := prepare(record, existing); err != nil {
		return err
	}
	return s.BaseService.Update(ctx, record)
}

// 与公开路由冲突的slug
var reservedSlugs = map[string]bool{
	"list": true,
	"tags": true,
}

// prepare 规范化并校验待写入的文章，existing为更新前的记录
func prepare(record *model.Post, existing *model.Post) error {
	record.Slug = strings.TrimSpace(record.Slug)
	if reservedSlugs[strings.ToLower(record.Slug)] {
		return fmt.Errorf("%w: slug %q is reserved", constant.ErrInvalidParams, record.Slug)
	}
	record.Tags = model.NormalizeTags(record.Tags)
	if record.NotionID != "" {
		id := util.NormalizeNotionID(record.NotionID)
		if id == "" {
			return fmt.Errorf("%w: notion id %q", constant.ErrInvalidParams, record.NotionID)
		}
		record.NotionID = id
	}
	if len(record.Content) > 0 {
		if _, err := notion.DecodeBlocks(record.Content); err != nil {
			return err
		}
	}
	// 发布时间只在首次发布时确定
	if record.IsPublished() && record.PublishedAt == nil {
		if existing != nil && existing.PublishedAt != nil {
			record.PublishedAt = existing.PublishedAt
		} else {
			now := time.Now()
			record.PublishedAt = &now
		}
	}
	return nil
}

// List 列表不返回块内容
func (s *postService) List(ctx context.Context, condition *model.Post, offset, limit int) ([]*model.Post, int64, error) {
	records, total, err := s.BaseService.List(ctx, condition, offset, limit)
	for _, r := range records {
		r.Content = nil
	}
	return records, total, err
}

func (s *postService) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	if slug == "" {
		return nil, constant.ErrInvalidParams
	}
	post := &model.Post{}
	err := s.db.WithContext(ctx).Where("slug = ? AND published = ?", slug, true).First(post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, constant.ErrRecordNotFound
		}
		logger.Error("查询文章失败", logger.F("slug", slug), logger.F("error", err))
		return nil, fmt.Errorf("%w: %v", constant.ErrDatabaseError, err)
	}
	return post, nil
}

// ListTags 已发布文章的标签及文章数，按数量降序
func (s *postService) ListTags(ctx context.Context) ([]*model.TagCount, error) {
	var tags []*model.TagCount
	published := s.db.Model(&model.Post{}).Select("id").Where("published = ?", true)
	err := s.db.WithContext(ctx).Model(&model.PostTag{}).
		Select("name, COUNT(*) AS count").
		Where("post_id IN (?)", published).
		Group("name").
		Order("count DESC, name ASC").
		Scan(&tags).Error
	if err != nil {
		logger.Error("查询标签失败", logger.F("error", err))
		return nil, fmt.Errorf("%w: %v", constant.ErrDatabaseError, err)
	}
	return tags, nil
}

// Document 已发布文章的块内容
func (s *postService) Document(ctx context.Context, slug string) (*Document, error) {
	post, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	doc := &Document{Post: post}
	if content := strings.TrimSpace(string(post.Content)); content != "" && content != "null" {
		blocks, err := notion.DecodeBlocks(post.Content)
		if err != nil {
			// 入库时已校验，这里只可能是被外部改动
			logger.Warn("文章内容无法解析", logger.F("slug", slug), logger.F("error", err))
		}
		doc.Blocks = blocks
	}
	post.Content = nil
	return doc, nil
}
