package models

import "time"

// MusicItem is one row of a user's music library (track or album), keyed by
// iTunes catalog id.
type MusicItem struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string     `gorm:"type:uuid;not null;uniqueIndex:idx_music_items_user_external" json:"user_id"`
	ItunesID    int64      `gorm:"not null;uniqueIndex:idx_music_items_user_external" json:"itunes_id"`
	Title       string     `gorm:"not null" json:"title"`
	Artist      *string    `json:"artist,omitempty"`
	ArtworkURL  *string    `json:"artwork_url,omitempty"`
	ReleaseDate *string    `json:"release_date,omitempty"`
	Genre       *string    `json:"genre,omitempty"`
	Listened    bool       `gorm:"default:false" json:"listened"`
	ListenedAt  *time.Time `json:"listened_at,omitempty"`
	Rating      *int       `gorm:"check:rating >= 1 AND rating <= 10" json:"rating,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MusicItem) TableName() string {
	return "music_items"
}

// MusicRecommendation: status vocabulary pending/hit/miss/listened.
type MusicRecommendation struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID      string     `gorm:"type:uuid;not null;index" json:"sender_id"`
	RecipientID   string     `gorm:"type:uuid;not null;index" json:"recipient_id"`
	ExternalID    string     `gorm:"not null" json:"external_id"`
	Title         string     `gorm:"not null" json:"title"`
	Artist        *string    `json:"artist,omitempty"`
	ArtworkURL    *string    `json:"artwork_url,omitempty"`
	Status        string     `gorm:"default:'pending';not null" json:"status"`
	Comment       *string    `json:"comment,omitempty"`
	SenderComment *string    `json:"sender_comment,omitempty"`
	ListenedAt    *time.Time `json:"listened_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	Sender    *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Recipient *User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

func (MusicRecommendation) TableName() string {
	return "music_recommendations"
}
