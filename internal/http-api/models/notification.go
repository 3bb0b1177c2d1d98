package models

import "time"

type Notification struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Type       string    `gorm:"not null" json:"type"` // NEW_RECOMMENDATION, FRIEND_CONNECTED, RECOMMENDATION_UPDATE
	Kind       string    `json:"kind,omitempty"`       // media kind, empty for friend events
	RefID      int64     `json:"ref_id,omitempty"`     // id of the referenced recommendation/connection
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Read       bool      `gorm:"default:false" json:"read"`
	Persistent bool      `gorm:"default:false" json:"persistent"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
