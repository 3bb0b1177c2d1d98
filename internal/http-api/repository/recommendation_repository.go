package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// RecommendationRepository is the generic storage interface shared by the
// four recommendation tables. The shared columns (sender_id, recipient_id,
// external_id, status) carry every query; kind-specific columns only ever
// appear in the Update field map.
type RecommendationRepository[T any] interface {
	Create(ctx context.Context, rec *T) error
	Inbox(ctx context.Context, recipientID string) ([]T, error)
	Outbox(ctx context.Context, senderID string) ([]T, error)
	GetByID(ctx context.Context, id int64) (*T, error)
	Update(ctx context.Context, id int64, recipientID string, fields map[string]any) (*T, error)
	Delete(ctx context.Context, id int64, senderID string) (*T, error)
	HasPending(ctx context.Context, senderID, recipientID, externalID string) (bool, error)
}

type recommendationRepository[T any] struct {
	db *gorm.DB
}

func NewRecommendationRepository[T any](db *gorm.DB) RecommendationRepository[T] {
	return &recommendationRepository[T]{db: db}
}

// Create inserts a recommendation. A second pending recommendation for the
// same (sender, recipient, external id) trips the partial unique index and
// comes back as ErrDuplicate.
func (r *recommendationRepository[T]) Create(ctx context.Context, rec *T) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *recommendationRepository[T]) Inbox(ctx context.Context, recipientID string) ([]T, error) {
	var recs []T
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("recipient_id = ?", recipientID).
		Order("id DESC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return recs, nil
}

func (r *recommendationRepository[T]) Outbox(ctx context.Context, senderID string) ([]T, error) {
	var recs []T
	if err := r.db.WithContext(ctx).
		Preload("Recipient").
		Where("sender_id = ?", senderID).
		Order("id DESC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list outbox: %w", err)
	}
	return recs, nil
}

func (r *recommendationRepository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	var rec T
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Recipient").
		First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

// Update is recipient-scoped: only the recipient may move a recommendation
// through its lifecycle. Returns the refreshed row with both users loaded so
// the caller can name the actor in the notification it publishes.
func (r *recommendationRepository[T]) Update(ctx context.Context, id int64, recipientID string, fields map[string]any) (*T, error) {
	var zero T
	result := r.db.WithContext(ctx).
		Model(&zero).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Updates(fields)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete is sender-scoped: a sender can retract a recommendation they sent.
// The removed row is returned so the caller can report what was retracted.
func (r *recommendationRepository[T]) Delete(ctx context.Context, id int64, senderID string) (*T, error) {
	var rec T
	if err := r.db.WithContext(ctx).
		Where("id = ? AND sender_id = ?", id, senderID).
		First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	var zero T
	if err := r.db.WithContext(ctx).
		Where("id = ? AND sender_id = ?", id, senderID).
		Delete(&zero).Error; err != nil {
		return nil, fmt.Errorf("delete recommendation: %w", err)
	}
	return &rec, nil
}

func (r *recommendationRepository[T]) HasPending(ctx context.Context, senderID, recipientID, externalID string) (bool, error) {
	var zero T
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&zero).
		Where("sender_id = ? AND recipient_id = ? AND external_id = ? AND status = 'pending'",
			senderID, recipientID, externalID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
