package models

import "time"

// Connection is one direction of a friend edge. Connecting two users always
// writes both directions (A→B and B→A) in one transaction, so a single
// directional lookup is enough anywhere friendship is checked.
type Connection struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_connections_pair" json:"user_id"`
	FriendID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_connections_pair" json:"friend_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	Friend *User `gorm:"foreignKey:FriendID" json:"friend,omitempty"`
}

func (Connection) TableName() string {
	return "connections"
}
