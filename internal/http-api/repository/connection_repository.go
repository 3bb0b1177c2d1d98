package repository

import (
	"context"
	"fmt"

	"npcfinder/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConnectionRepository stores friend edges. Every connect writes both
// directions in one transaction; reads only ever need the user_id side.
type ConnectionRepository interface {
	Connect(ctx context.Context, userID, friendID string) error
	ListFriends(ctx context.Context, userID string) ([]models.Connection, error)
	Remove(ctx context.Context, userID, friendID string) error
	AreFriends(ctx context.Context, userID, friendID string) (bool, error)
}

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

// Connect writes A→B and B→A. ON CONFLICT DO NOTHING makes a repeat
// connect a no-op rather than an error.
func (r *connectionRepository) Connect(ctx context.Context, userID, friendID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edges := []models.Connection{
			{UserID: userID, FriendID: friendID},
			{UserID: friendID, FriendID: userID},
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error; err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		return nil
	})
}

func (r *connectionRepository) ListFriends(ctx context.Context, userID string) ([]models.Connection, error) {
	var connections []models.Connection
	if err := r.db.WithContext(ctx).
		Preload("Friend").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&connections).Error; err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return connections, nil
}

// Remove deletes both directions of the edge.
func (r *connectionRepository) Remove(ctx context.Context, userID, friendID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
				userID, friendID, friendID, userID).
			Delete(&models.Connection{})
		if result.Error != nil {
			return fmt.Errorf("remove friend: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *connectionRepository) AreFriends(ctx context.Context, userID, friendID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
