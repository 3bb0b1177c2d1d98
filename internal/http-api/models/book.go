package models

import "time"

// BookItem is one row of a user's book library, keyed by Open Library work key.
type BookItem struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        string     `gorm:"type:uuid;not null;uniqueIndex:idx_book_items_user_external" json:"user_id"`
	OpenLibraryID string     `gorm:"not null;uniqueIndex:idx_book_items_user_external" json:"open_library_id"`
	Title         string     `gorm:"not null" json:"title"`
	Author        *string    `json:"author,omitempty"`
	CoverURL      *string    `json:"cover_url,omitempty"`
	PublishedDate *string    `json:"published_date,omitempty"`
	Genre         *string    `json:"genre,omitempty"`
	Read          bool       `gorm:"default:false" json:"read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	Rating        *int       `gorm:"check:rating >= 1 AND rating <= 10" json:"rating,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BookItem) TableName() string {
	return "book_items"
}

// BookRecommendation deliberately keeps its historical column names
// (note/sender_note/sent_at) rather than the movie table's
// comment/sender_comment/created_at; the transform layer owns the mapping.
type BookRecommendation struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID    string     `gorm:"type:uuid;not null;index" json:"sender_id"`
	RecipientID string     `gorm:"type:uuid;not null;index" json:"recipient_id"`
	ExternalID  string     `gorm:"not null" json:"external_id"`
	Title       string     `gorm:"not null" json:"title"`
	CoverURL    *string    `json:"cover_url,omitempty"`
	Status      string     `gorm:"default:'pending';not null" json:"status"` // pending/hit/miss/read
	Note        *string    `json:"note,omitempty"`
	SenderNote  *string    `json:"sender_note,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	SentAt      time.Time  `gorm:"autoCreateTime" json:"sent_at"`

	// Associations
	Sender    *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Recipient *User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

func (BookRecommendation) TableName() string {
	return "book_recommendations"
}
