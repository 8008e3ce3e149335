package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/yockii/notion_blog/internal/constant"
	"github.com/yockii/notion_blog/internal/model"
	"github.com/yockii/notion_blog/pkg/logger"
	"gorm.io/gorm"
)

// Hooks 具体服务定制通用增删改查的扩展点
type Hooks[T model.Model] interface {
	CheckDuplicate(record T) (bool, error)
	BuildCondition(query *gorm.DB, condition T) *gorm.DB
	ListOrder() string
}

type BaseService[T model.Model] struct {
	db    *gorm.DB
	hooks Hooks[T]
}

// NewBaseService hooks为nil时使用默认行为
func NewBaseService[T model.Model](db *gorm.DB, hooks Hooks[T]) *BaseService[T] {
	s := &BaseService[T]{db: db}
	if hooks == nil {
		hooks = defaultHooks[T]{}
	}
	s.hooks = hooks
	return s
}

type defaultHooks[T model.Model] struct{}

func (defaultHooks[T]) CheckDuplicate(T) (bool, error) {
	return false, nil
}

func (defaultHooks[T]) BuildCondition(query *gorm.DB, _ T) *gorm.DB {
	return query
}

func (defaultHooks[T]) ListOrder() string {
	return "created_at DESC"
}

func (s *BaseService[T]) NewModel() T {
	var t T
	tType := reflect.TypeOf(t)

	// 如果 T 是指针类型，则需要创建指针指向的对象
	if tType.Kind() == reflect.Ptr {
		return reflect.New(tType.Elem()).Interface().(T)
	}
	return reflect.New(tType).Elem().Interface().(T)
}

// Create 创建记录
func (s *BaseService[T]) Create(ctx context.Context, record T) error {
	duplicate, err := s.hooks.CheckDuplicate(record)
	if err != nil {
		return fmt.Errorf("%w: %v", constant.ErrDatabaseError, err)
	}
	if duplicate {
		return constant.ErrRecordDuplicate
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		logger.Error("创建记录失败", logger.F("error", err))
		return fmt.Errorf("%w: %v", constant.ErrDatabaseError, err)
	}
	return nil
}

// Update 更新非零值字段
func (s *BaseService[T]) Update(ctx context.Context, record T) error {
	id := record.GetID()
	if id == 0 {
		return constant.ErrRecordIDEmpty
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	duplicate, err := s.hooks.CheckDuplicate(record)
	if err != nil {
		return fmt.Errorf("%w: %v", constant.ErrDatabaseError, err)
	}
	if duplicate {
		return constant.ErrRecordDuplicate
	}

	if err := s.db.WithContext(ctx).Model(record).Updates(record).Error; err != nil {
		logger.Error("更新记录失败", logger.F("id", id), logger.F("error", err))
		return fmt.Errorf("%w: %v", constant.ErrDatabaseError, err)
	}
	return nil
}

// Delete 删除记录
func (s *BaseService[T]) Delete(ctx context.Context, id uint64) error {
	if id == 0 {
		return constant.ErrRecordIDEmpty
	}
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(record).Error; err != nil {
		logger.Error("删除记录失败", logger.F("id", id), logger.F("error", err))
		return fmt.Errorf("%w: %v", constant.ErrDatabaseError, err)
	}
	return nil
}

// Get 查询记录
func (s *BaseService[T]) Get(ctx context.Context, id uint64) (T, error) {
	record := s.NewModel()
	if err := s.db.WithContext(ctx).First(record, "id = ?", id).Error; err != nil {
		var zero T
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, constant.ErrRecordNotFound
		}
		return zero, fmt.Errorf("%w: %v", constant.ErrDatabaseError, err)
	}
	return record, nil
}

// List 查询记录列表
func (s *BaseService[T]) List(ctx context.Context, condition T, offset, limit int) ([]T, int64, error) {
	var records []T
	var total int64

	query := s.db.WithContext(ctx).Model(s.NewModel())
	query = s.hooks.BuildCondition(query, condition)

	if err := query.Count(&total).Error; err != nil {
		return records, 0, fmt.Errorf("%w: %v", constant.ErrDatabaseError, err)
	}

	offset, limit = normalizePage(offset, limit)
	if err := query.Offset(offset).Limit(limit).Order(s.hooks.ListOrder()).Find(&records).Error; err != nil {
		return records, 0, fmt.Errorf("%w: %v", constant.ErrDatabaseError, err)
	}
	return records, total, nil
}

func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return offset, limit
}
