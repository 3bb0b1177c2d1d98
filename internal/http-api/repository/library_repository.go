package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// LibraryRepository is the generic storage interface shared by all four
// library tables. T is the concrete item model (MovieItem, BookItem,
// GameItem, MusicItem); the external-ID column name differs per table and
// is fixed at construction.
type LibraryRepository[T any] interface {
	Add(ctx context.Context, item *T) error
	List(ctx context.Context, userID string) ([]T, error)
	GetByID(ctx context.Context, userID string, id int64) (*T, error)
	Update(ctx context.Context, userID string, id int64, fields map[string]any) (*T, error)
	Remove(ctx context.Context, userID string, id int64) (*T, error)
	Exists(ctx context.Context, userID string, externalID any) (bool, error)
}

type libraryRepository[T any] struct {
	db       *gorm.DB
	idColumn string // e.g. "tmdb_id", "open_library_id"
}

func NewLibraryRepository[T any](db *gorm.DB, idColumn string) LibraryRepository[T] {
	return &libraryRepository[T]{db: db, idColumn: idColumn}
}

func (r *libraryRepository[T]) Add(ctx context.Context, item *T) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *libraryRepository[T]) List(ctx context.Context, userID string) ([]T, error) {
	var items []T
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	return items, nil
}

func (r *libraryRepository[T]) GetByID(ctx context.Context, userID string, id int64) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// Update applies the given column map and returns the refreshed row.
// Column names (note/consumed-at) differ per table, hence a map rather
// than a typed patch struct.
func (r *libraryRepository[T]) Update(ctx context.Context, userID string, id int64, fields map[string]any) (*T, error) {
	var zero T
	result := r.db.WithContext(ctx).
		Model(&zero).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(fields)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, userID, id)
}

// Remove deletes the row and returns it, so callers can offer undo.
func (r *libraryRepository[T]) Remove(ctx context.Context, userID string, id int64) (*T, error) {
	item, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	var zero T
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&zero).Error; err != nil {
		return nil, fmt.Errorf("remove from library: %w", err)
	}
	return item, nil
}

func (r *libraryRepository[T]) Exists(ctx context.Context, userID string, externalID any) (bool, error) {
	var zero T
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&zero).
		Where(fmt.Sprintf("user_id = ? AND %s = ?", r.idColumn), userID, externalID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
