package models

import "time"

// GameItem is one row of a user's game library, keyed by RAWG id.
type GameItem struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string     `gorm:"type:uuid;not null;uniqueIndex:idx_game_items_user_external" json:"user_id"`
	RawgID    int64      `gorm:"not null;uniqueIndex:idx_game_items_user_external" json:"rawg_id"`
	Title     string     `gorm:"not null" json:"title"`
	CoverURL  *string    `json:"cover_url,omitempty"`
	Released  *string    `json:"released,omitempty"`
	Platform  *string    `json:"platform,omitempty"`
	Played    bool       `gorm:"default:false" json:"played"`
	PlayedAt  *time.Time `json:"played_at,omitempty"`
	Rating    *int       `gorm:"check:rating >= 1 AND rating <= 10" json:"rating,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (GameItem) TableName() string {
	return "game_items"
}

// GameRecommendation: status vocabulary pending/hit/miss/played and
// recipient_note/sender_note column names.
type GameRecommendation struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID      string     `gorm:"type:uuid;not null;index" json:"sender_id"`
	RecipientID   string     `gorm:"type:uuid;not null;index" json:"recipient_id"`
	ExternalID    string     `gorm:"not null" json:"external_id"`
	Title         string     `gorm:"not null" json:"title"`
	CoverURL      *string    `json:"cover_url,omitempty"`
	Status        string     `gorm:"default:'pending';not null" json:"status"`
	RecipientNote *string    `json:"recipient_note,omitempty"`
	SenderNote    *string    `json:"sender_note,omitempty"`
	PlayedAt      *time.Time `json:"played_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	Sender    *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Recipient *User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

func (GameRecommendation) TableName() string {
	return "game_recommendations"
}
